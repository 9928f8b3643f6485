package directory

// MaxFieldLength is the field limit of the accounting product's customer list.
const MaxFieldLength = 20

// Truncate cuts s to at most max runes. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
