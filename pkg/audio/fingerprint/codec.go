package fingerprint

import (
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint/compression"
)

// EncodeFingerprint compresses fp, optionally as base64 text.
func EncodeFingerprint(fp []uint32, algorithm int, base64 bool) ([]byte, error) {
	data, err := compression.Compress(fp, algorithm)
	if err != nil {
		return nil, NewError(StageEncode, ErrCodeEncoding, "failed to compress fingerprint", err)
	}
	if base64 {
		return []byte(compression.EncodeBase64(data)), nil
	}
	return data, nil
}

// DecodeFingerprint reverses EncodeFingerprint. The algorithm is -1 when
// the input has no header.
func DecodeFingerprint(data []byte, base64 bool) ([]uint32, int, error) {
	if base64 {
		data = compression.DecodeBase64(string(data))
	}
	fp, algorithm, err := compression.Decompress(data)
	if err != nil {
		return []uint32{}, algorithm, NewError(StageDecode, ErrCodeDecoding, "failed to decompress fingerprint", err)
	}
	return fp, algorithm, nil
}
