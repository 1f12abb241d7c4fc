package driver

import "strings"

// Address suffixes of the messaging network's canonical addressing scheme.
const (
	userAddressSuffix  = "@s.whatsapp.net"
	groupAddressSuffix = "@g.us"
)

// CanonicalAddress converts a destination into the network's canonical
// address form. Group addresses and already-canonical user addresses pass
// through unchanged; anything else is treated as a bare phone number and
// has every non-digit stripped before the user suffix is appended.
func CanonicalAddress(target string) string {
	if strings.Contains(target, groupAddressSuffix) || strings.Contains(target, userAddressSuffix) {
		return target
	}

	var digits strings.Builder
	for _, r := range target {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String() + userAddressSuffix
}

// IsGroupAddress reports whether the target addresses a group chat.
func IsGroupAddress(target string) bool {
	return strings.Contains(target, groupAddressSuffix)
}
