package entity

import (
	"testing"
	"time"
)

func TestRole_FederatedOnly(t *testing.T) {
	federated := map[Role]bool{
		RoleAdmin:         false,
		RoleRegionalAdmin: true,
		RolePentester:     true,
		RoleClient:        false,
		RolePartner:       false,
	}
	for role, want := range federated {
		if got := role.FederatedOnly(); got != want {
			t.Errorf("%s.FederatedOnly() = %v, want %v", role, got, want)
		}
	}
}

func TestRoles_Contains(t *testing.T) {
	staff := Roles{RoleAdmin, RoleRegionalAdmin, RolePentester}

	if !staff.Contains(RolePentester) {
		t.Error("staff must contain pentester")
	}
	if staff.Contains(RoleClient) {
		t.Error("staff must not contain client")
	}
}

func TestOneTimeCode_Usable(t *testing.T) {
	now := time.Now()
	base := OneTimeCode{ExpiresAt: now.Add(10 * time.Minute)}

	if !base.Usable(now, 3) {
		t.Error("fresh code must be usable")
	}

	expired := base
	expired.ExpiresAt = now.Add(-time.Second)
	if expired.Usable(now, 3) {
		t.Error("expired code must not be usable")
	}

	exhausted := base
	exhausted.Attempts = 3
	if exhausted.Usable(now, 3) {
		t.Error("code at the attempt cap must not be usable")
	}

	consumedAt := now
	consumed := base
	consumed.ConsumedAt = &consumedAt
	if consumed.Usable(now, 3) {
		t.Error("consumed code must not be usable")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	session := Session{ExpiresAt: now.Add(time.Hour)}

	if session.Expired(now) {
		t.Error("live session must not report expired")
	}
	if !session.Expired(now.Add(2 * time.Hour)) {
		t.Error("session past expiry must report expired")
	}
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Chen", "Ada Chen"},
		{"Ada", "", "Ada"},
		{"", "Chen", "Chen"},
		{"", "", ""},
	}
	for _, tt := range tests {
		u := User{FirstName: tt.first, LastName: tt.last}
		if got := u.FullName(); got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
