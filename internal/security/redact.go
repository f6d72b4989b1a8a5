// Package security masks credentials before they reach output or logs.
package security

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameters whose values are masked.
var sensitiveParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"secret":       true,
	"password":     true,
	"signature":    true,
	"sig":          true,
}

// MaskCredential masks a credential value, keeping a short prefix and
// suffix of long values.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// RedactURL masks the password in the userinfo and the values of sensitive
// query parameters. Strings that do not parse are replaced whole.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "xxxxx"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k, vs := range q {
			if !sensitiveParams[strings.ToLower(k)] {
				continue
			}
			for i := range vs {
				vs[i] = MaskCredential(vs[i])
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// IsSensitiveParam reports whether a query parameter name is masked by RedactURL.
func IsSensitiveParam(name string) bool {
	return sensitiveParams[strings.ToLower(name)]
}
