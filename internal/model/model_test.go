package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGeneralize(t *testing.T) {
	offered := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	desired := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	tok := Token{1, 2, 3}

	tests := []struct {
		name   string
		member Advert
	}{
		{
			name: "fully expanded member",
			member: Advert{
				ID: 7, Token: tok, ExternalOfferID: 813811, OfferedAt: &offered,
				SubjectCode: "NPRG030", SubjectName: "Programming I", DesiredDate: &desired,
				ContactEmail: "a@example.com", Active: true, Highlighted: true,
			},
		},
		{
			name:   "bare seed",
			member: Advert{ID: 1, Token: tok, ContactEmail: "a@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.member
			g := tt.member.Generalize()

			want := Advert{
				ID: tt.member.ID, Token: tok, ExternalOfferID: tt.member.ExternalOfferID,
				OfferedAt: tt.member.OfferedAt, ContactEmail: tt.member.ContactEmail,
				Active: tt.member.Active, Highlighted: tt.member.Highlighted,
			}
			if diff := cmp.Diff(want, g.Advert); diff != "" {
				t.Errorf("Generalize mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(before, tt.member); diff != "" {
				t.Errorf("input mutated (-before +after):\n%s", diff)
			}
		})
	}
}

func TestCloneSharedDropsID(t *testing.T) {
	offered := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	src := Advert{ID: 42, Token: Token{9}, OfferedAt: &offered, SubjectCode: "X", ContactEmail: "e@x"}

	c := src.CloneWithSubject()
	if c.ID != 0 {
		t.Fatalf("clone kept id %d", c.ID)
	}
	if c.OfferedAt == src.OfferedAt {
		t.Fatal("clone aliases OfferedAt pointer")
	}
	if diff := cmp.Diff("X", c.SubjectCode); diff != "" {
		t.Errorf("subject mismatch (-want +got):\n%s", diff)
	}
}

func TestToken(t *testing.T) {
	tok, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	s := tok.String()
	if len(s) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(s))
	}

	got, err := ParseToken(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != tok {
		t.Error("parsed token differs")
	}

	for _, bad := range []string{"", "abc", "zz" + s[2:], s + "00"} {
		if _, err := ParseToken(bad); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ParseToken(%q) = %v, want ErrInvalidToken", bad, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		info SubjectInfo
		want string
	}{
		{SubjectInfo{Title: "Programming I", TitleLocal: "Programování I", Language: "CZE"}, "🇨🇿 Programování I"},
		{SubjectInfo{Title: "Programming I", TitleLocal: "Programování I", Language: "ENG"}, "🇬🇧 Programming I"},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.info.DisplayName()); diff != "" {
			t.Errorf("DisplayName mismatch (-want +got):\n%s", diff)
		}
	}
}
