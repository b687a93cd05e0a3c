// Package view manages named, shareable read-only windows onto a project.
//
// View names are global. Each view carries its own bearer token, generated
// at creation and handed to the owner, who shares name and token as a
// link. Access follows a fixed order: a matching token always grants, a
// wrong token always denies, and with no token only public views open.
//
// Views are not removed when their project is deleted out of band. The
// first Resolve that finds the project gone purges the row.
package view
