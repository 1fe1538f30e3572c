package pio

func U8(b []byte) (i uint8) {
	return b[0]
}

func I8(b []byte) (i int8) {
	return int8(b[0])
}

func U16BE(b []byte) (i uint16) {
	i = uint16(b[0])
	i <<= 8
	i |= uint16(b[1])
	return
}

func I16BE(b []byte) (i int16) {
	return int16(U16BE(b))
}

func U24BE(b []byte) (i uint32) {
	i = uint32(b[0])
	i <<= 8
	i |= uint32(b[1])
	i <<= 8
	i |= uint32(b[2])
	return
}

func U32BE(b []byte) (i uint32) {
	i = uint32(b[0])
	i <<= 8
	i |= uint32(b[1])
	i <<= 8
	i |= uint32(b[2])
	i <<= 8
	i |= uint32(b[3])
	return
}

func I32BE(b []byte) (i int32) {
	return int32(U32BE(b))
}

func U64BE(b []byte) (i uint64) {
	i = uint64(U32BE(b[0:4]))
	i <<= 32
	i |= uint64(U32BE(b[4:8]))
	return
}

// Fixed16_16 decodes a signed 16.16 fixed point value.
func Fixed16_16(u uint32) float64 {
	return float64(int16(u>>16)) + float64(u&0xffff)/65536.0
}

// Fixed2_30 decodes a signed 2.30 fixed point value.
func Fixed2_30(u uint32) float64 {
	hi := int32(u>>30) & 0x3
	if hi >= 2 {
		hi -= 4
	}
	return float64(hi) + float64(u&0x3fffffff)/float64(1<<30)
}
