package kbo

import (
	"errors"
	"testing"
)

func TestResolveTeam(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TeamID
	}{
		{name: "roman code", input: "KIA", want: TeamKIA},
		{name: "korean short name", input: "삼성", want: TeamSamsung},
		{name: "korean short name kiwoom", input: "키움", want: TeamKiwoom},
		{name: "full club name", input: "두산 베어스", want: TeamDoosan},
		{name: "surrounding whitespace", input: "  LG  ", want: TeamLG},
		{name: "lowercase roman", input: "ssg", want: TeamSSG},
		{name: "mixed case roman", input: "Nc", want: TeamNC},
		{name: "historical SK", input: "SK", want: TeamSSG},
		{name: "historical nexen", input: "넥센", want: TeamKiwoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTeam(tt.input)
			if err != nil {
				t.Fatalf("ResolveTeam(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ResolveTeam(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveTeamUnknown(t *testing.T) {
	inputs := []string{"", "유니콘스", "Giants", "샌프란시스코", "키 움"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := ResolveTeam(input)
			if err == nil {
				t.Fatalf("ResolveTeam(%q) = %v, want error", input, got)
			}
			var unknown *ErrUnknownTeam
			if !errors.As(err, &unknown) {
				t.Errorf("ResolveTeam(%q) error = %T, want *ErrUnknownTeam", input, err)
			}
		})
	}
}

func TestValidTeam(t *testing.T) {
	for _, id := range Teams {
		if !ValidTeam(id) {
			t.Errorf("ValidTeam(%v) = false, want true", id)
		}
	}
	if ValidTeam("XX") {
		t.Error("ValidTeam(XX) = true, want false")
	}
}

func TestTeamName(t *testing.T) {
	if got := TeamName(TeamHanwha); got != "한화 이글스" {
		t.Errorf("TeamName(HH) = %q", got)
	}
	// Unknown codes fall back to the code itself
	if got := TeamName("XX"); got != "XX" {
		t.Errorf("TeamName(XX) = %q, want XX", got)
	}
}

func TestTeamsCount(t *testing.T) {
	if len(Teams) != TeamCount {
		t.Errorf("len(Teams) = %d, want %d", len(Teams), TeamCount)
	}
}
