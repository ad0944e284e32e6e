package common

// WipeByteArray overwrites b with zeros. Used to drop passwords read from the
// terminal once they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// BearerValue formats token for the Authorization header.
func BearerValue(token string) string {
	return BearerScheme + " " + token
}
