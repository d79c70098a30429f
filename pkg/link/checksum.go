package link

// Checksum is the running XOR over opcode, address, length and payload.
type Checksum byte

// Update folds bytes into the checksum.
func (c Checksum) Update(bytes ...byte) Checksum {
	for _, b := range bytes {
		c ^= Checksum(b)
	}
	return c
}

// ChecksumOf calculates the checksum of a frame with the given fields.
func ChecksumOf(op Opcode, address byte, payload []byte) Checksum {
	return Checksum(0).Update(byte(op), address, byte(len(payload))).Update(payload...)
}
