package session

import "github.com/Fatihur/api-baru/internal/driver"

// normalizeAction rewrites every destination field of an action into the
// network's canonical address form. Group identifiers and participant
// lists go through the same normalization the original client applied
// before handing anything to the driver.
func normalizeAction(a driver.Action) driver.Action {
	switch v := a.(type) {
	case driver.SendText:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.SendMedia:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.SendLocation:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.SendContact:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.SendButtons:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.SendList:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.SendPoll:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.Reply:
		v.To = driver.CanonicalAddress(v.To)
		return v
	case driver.Forward:
		v.To = driver.CanonicalAddress(v.To)
		v.From = driver.CanonicalAddress(v.From)
		return v
	case driver.DeleteMessage:
		v.Chat = driver.CanonicalAddress(v.Chat)
		return v
	case driver.React:
		v.Chat = driver.CanonicalAddress(v.Chat)
		return v
	case driver.GroupCreate:
		v.Participants = normalizeAll(v.Participants)
		return v
	case driver.GroupMembers:
		v.Participants = normalizeAll(v.Participants)
		return v
	case driver.CheckNumber:
		v.Target = driver.CanonicalAddress(v.Target)
		return v
	case driver.ProfilePicture:
		v.Target = driver.CanonicalAddress(v.Target)
		return v
	case driver.BusinessProfile:
		v.Target = driver.CanonicalAddress(v.Target)
		return v
	case driver.PresenceSubscribe:
		v.Target = driver.CanonicalAddress(v.Target)
		return v
	case driver.ChatPresence:
		v.Chat = driver.CanonicalAddress(v.Chat)
		return v
	case driver.MarkRead:
		v.Chat = driver.CanonicalAddress(v.Chat)
		return v
	case driver.BlockUpdate:
		v.Target = driver.CanonicalAddress(v.Target)
		return v
	default:
		// Group-scoped and account-scoped actions carry no bare numbers.
		return a
	}
}

func normalizeAll(targets []string) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = driver.CanonicalAddress(t)
	}
	return out
}
