package pio

func PutU8(b []byte, v uint8) {
	b[0] = v
}

func PutI8(b []byte, v int8) {
	b[0] = byte(v)
}

func PutU16BE(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func PutI16BE(b []byte, v int16) {
	PutU16BE(b, uint16(v))
}

func PutU24BE(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func PutU32BE(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func PutI32BE(b []byte, v int32) {
	PutU32BE(b, uint32(v))
}

func PutU64BE(b []byte, v uint64) {
	PutU32BE(b[0:4], uint32(v>>32))
	PutU32BE(b[4:8], uint32(v))
}
