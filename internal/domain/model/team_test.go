package model

import "testing"

func TestTeamAllReady(t *testing.T) {
	tests := []struct {
		name    string
		members []TeamMember
		want    bool
	}{
		{"empty team is never ready", nil, false},
		{"single ready member", []TeamMember{{UserID: "a", Ready: true}}, true},
		{"one member not ready", []TeamMember{{UserID: "a", Ready: true}, {UserID: "b", Ready: false}}, false},
		{"all ready", []TeamMember{{UserID: "a", Ready: true}, {UserID: "b", Ready: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := &Team{Members: tt.members}
			if got := team.AllReady(); got != tt.want {
				t.Errorf("AllReady() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTeamHasMember(t *testing.T) {
	team := &Team{Members: []TeamMember{{UserID: "u1"}, {UserID: "u2"}}}
	if !team.HasMember("u1") {
		t.Error("expected u1 to be a member")
	}
	if team.HasMember("u3") {
		t.Error("did not expect u3 to be a member")
	}
}
