package ledger

import "strings"

// keyReplacer substitutes every character the backing store forbids in
// a key segment. There is exactly one definition of this transform; all
// read and write sites go through SanitizeKey.
var keyReplacer = strings.NewReplacer(
	".", "_",
	"#", "_",
	"$", "_",
	"/", "_",
	"[", "_",
	"]", "_",
)

// SanitizeKey turns a user's email into a storage-safe document key,
// e.g. "a@x.com" -> "a@x_com".
func SanitizeKey(email string) string {
	return keyReplacer.Replace(email)
}
