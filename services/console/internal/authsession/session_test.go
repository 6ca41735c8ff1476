package authsession

import (
	"errors"
	"testing"

	"github.com/voacom/commercial-intelligence-system/services/console/internal/platformclient"
)

func TestLoginLogoutLifecycle(t *testing.T) {
	s := New()
	if s.Authenticated() {
		t.Fatal("fresh session must not be authenticated")
	}

	s.Login("tok-1")
	token, ok := s.Token()
	if !ok || token != "tok-1" {
		t.Fatalf("Token() = %q, %v", token, ok)
	}

	var hookFired bool
	s.OnLogout(func() { hookFired = true })
	s.Logout()
	if s.Authenticated() {
		t.Fatal("logout must drop the token")
	}
	if !hookFired {
		t.Fatal("logout must fire registered hooks")
	}
}

func TestExpireOnlyActsOnUnauthorized(t *testing.T) {
	s := New()
	s.Login("tok-1")

	if s.Expire(errors.New("boom")) {
		t.Fatal("generic error must not expire the session")
	}
	if !s.Authenticated() {
		t.Fatal("token must survive non-401 errors")
	}

	var hookFired bool
	s.OnLogout(func() { hookFired = true })
	err := &platformclient.APIError{Status: 401, Message: "unauthorized"}
	if !s.Expire(err) {
		t.Fatal("401 must expire the session")
	}
	if s.Authenticated() {
		t.Fatal("token must be dropped after expiry")
	}
	if hookFired {
		t.Fatal("expire must not fire logout hooks")
	}
}

func TestExpireAndCloseFiresHooksOnUnauthorized(t *testing.T) {
	s := New()
	s.Login("tok-1")

	var hookFired bool
	s.OnLogout(func() { hookFired = true })

	if s.ExpireAndClose(errors.New("boom")) {
		t.Fatal("generic error must not expire the session")
	}
	if hookFired {
		t.Fatal("non-401 errors must not fire hooks")
	}

	err := &platformclient.APIError{Status: 401, Message: "unauthorized"}
	if !s.ExpireAndClose(err) {
		t.Fatal("401 must expire the session")
	}
	if s.Authenticated() {
		t.Fatal("token must be dropped after expiry")
	}
	if !hookFired {
		t.Fatal("401 outside the editing flow must fire logout hooks")
	}
}
