// Package project tracks the projects each user owns.
//
// A project lives in two places: a row in the projects table and a
// directory below the owner's storage root, named by the fragment of the
// project name. The directory is the authoritative existence check. Create
// makes it with a single mkdir before inserting the row, and Delete removes
// it after the rows are gone. Check reports where the two disagree.
//
// The registry is also the only writer of a user's active project.
package project
