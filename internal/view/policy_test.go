package view

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	public := &View{Name: "pub", Public: true, Token: "PUBTOKEN"}
	private := &View{Name: "priv", Public: false, Token: "PRIVTOKEN"}

	tests := []struct {
		name  string
		view  *View
		token string
		want  error
	}{
		{"public without token", public, "", nil},
		{"public with its token", public, "PUBTOKEN", nil},
		{"public with wrong token", public, "garbage", ErrInvalidToken},
		{"private without token", private, "", ErrTokenRequired},
		{"private with its token", private, "PRIVTOKEN", nil},
		{"private with wrong token", private, "garbage", ErrInvalidToken},
		{"private with other view's token", private, "PUBTOKEN", ErrInvalidToken},
		{"prefix of token", private, "PRIV", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Authorize(tt.view, tt.token); !errors.Is(err, tt.want) {
				t.Errorf("Authorize() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIsValidName(t *testing.T) {
	valid := []string{"pub_view", "A-1", "x"}
	invalid := []string{"", "../etc", "a b", "a|b", "a/b", "name;drop", "ü"}

	for _, n := range valid {
		if !IsValidName(n) {
			t.Errorf("IsValidName(%q) = false, want true", n)
		}
	}
	for _, n := range invalid {
		if IsValidName(n) {
			t.Errorf("IsValidName(%q) = true, want false", n)
		}
	}
}
