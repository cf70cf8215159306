package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/bylaws":                    "/v1/bylaws",
		"/v1/bylaws/active":             "/v1/bylaws/active",
		"/v1/bylaws/01ABC":              "/v1/bylaws/:id",
		"/v1/bylaws/01ABC/activate":     "/v1/bylaws/:id/activate",
		"/v1/bylaws/01ABC/extra/deep":   "/v1/bylaws/01ABC/extra/deep",
		"/v1/members/me":                "/v1/members/me",
		"/v1/members/01ABC":             "/v1/members/:id",
		"/v1/members/01ABC/role":        "/v1/members/:id/role",
		"/v1/members/01ABC/withdraw":    "/v1/members/:id/withdraw",
		"/v1/treasury/transactions":     "/v1/treasury/transactions",
		"/v1/treasury/balance?as_of=x":  "/v1/treasury/balance",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
