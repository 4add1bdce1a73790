package kdcpay

import "strings"

// Characters KDCpay strips from a field before it enters the checksum input.
// URLs keep '#', '=', ':' and '&' so that query strings survive.
const (
	paramBlacklist = ",#(){}<>`!$%^=+|\\:'\";~[]*&"
	urlBlacklist   = ",(){}<>`!$%^+|\\'\";~[]*"
)

// SanitizeParam removes every character of the generic blacklist from v.
func SanitizeParam(v string) string {
	return strip(v, paramBlacklist)
}

// SanitizeURL removes every character of the URL blacklist from v.
func SanitizeURL(v string) string {
	return strip(v, urlBlacklist)
}

// strip works on bytes, not runes: the blacklists are ASCII and invalid UTF-8
// in a gateway value must pass through unchanged.
func strip(v, blacklist string) string {
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if strings.IndexByte(blacklist, v[i]) >= 0 {
			continue
		}
		b.WriteByte(v[i])
	}
	return b.String()
}
