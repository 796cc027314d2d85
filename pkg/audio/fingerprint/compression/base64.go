package compression

import "encoding/base64"

// URL-safe alphabet without padding.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var decodeTable = func() [256]byte {
	var table [256]byte
	for i := 0; i < len(alphabet); i++ {
		table[alphabet[i]] = byte(i)
	}
	return table
}()

func EncodedLen(n int) int {
	return (n*4 + 2) / 3
}

func DecodedLen(n int) int {
	return n * 3 / 4
}

func EncodeBase64(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64 never fails: characters outside the alphabet decode as zero
// and a dangling sixth-bit group is ignored.
func DecodeBase64(s string) []byte {
	out := make([]byte, 0, DecodedLen(len(s)))

	i := 0
	for ; len(s)-i >= 4; i += 4 {
		b0, b1, b2, b3 := decodeTable[s[i]], decodeTable[s[i+1]], decodeTable[s[i+2]], decodeTable[s[i+3]]
		out = append(out, b0<<2|b1>>4, b1<<4|b2>>2, b2<<6|b3)
	}

	switch len(s) - i {
	case 3:
		b0, b1, b2 := decodeTable[s[i]], decodeTable[s[i+1]], decodeTable[s[i+2]]
		out = append(out, b0<<2|b1>>4, b1<<4|b2>>2)
	case 2:
		b0, b1 := decodeTable[s[i]], decodeTable[s[i+1]]
		out = append(out, b0<<2|b1>>4)
	}
	return out
}
