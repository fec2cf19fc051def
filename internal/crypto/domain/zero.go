package domain

// Zero overwrites b with zeros to clear key material from memory. Safe on nil.
func Zero(b []byte) {
	clear(b)
}
