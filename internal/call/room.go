package call

import "strings"

// RoomName derives the conference room for an event. The derivation is
// deterministic so every client computes the same room independently:
// lowercase, non-alphanumeric runs collapsed to single hyphens, prefixed to
// keep rooms from colliding with other deployments sharing the backend.
func RoomName(prefix, eventID string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(eventID) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	slug := b.String()
	if slug == "" {
		slug = "default"
	}
	return prefix + "-" + slug
}
