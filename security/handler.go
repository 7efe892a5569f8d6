package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// Handler decrypts the bytes of one string or stream belonging to the
// object identified by ref.
type Handler interface {
	Decrypt(data []byte, ref core.Reference) ([]byte, error)
}

// DocumentHandler decrypts the strings and streams of a document,
// choosing the crypt filter for each.
type DocumentHandler interface {
	DecryptString(data []byte, ref core.Reference) ([]byte, error)
	DecryptStream(stream *core.Stream, ref core.Reference) ([]byte, error)
}

// NullHandler leaves data unchanged. It serves unencrypted documents and the
// Identity crypt filter.
type NullHandler struct{}

// Decrypt returns data unchanged
func (NullHandler) Decrypt(data []byte, _ core.Reference) ([]byte, error) { return data, nil }

// DecryptString returns data unchanged
func (NullHandler) DecryptString(data []byte, _ core.Reference) ([]byte, error) { return data, nil }

// DecryptStream returns the stream data unchanged
func (NullHandler) DecryptStream(stream *core.Stream, _ core.Reference) ([]byte, error) {
	return stream.Data, nil
}

// RC4Handler decrypts with RC4 under a per-object key.
type RC4Handler struct {
	key []byte
}

// NewRC4Handler creates an RC4 handler for a 5 to 16 byte file key
func NewRC4Handler(key []byte) (*RC4Handler, error) {
	if len(key) < 5 || len(key) > 16 {
		return nil, pdferr.Malformedf("RC4 key must be 5 to 16 bytes")
	}
	return &RC4Handler{key: append([]byte(nil), key...)}, nil
}

// Decrypt applies the RC4 keystream
func (h *RC4Handler) Decrypt(data []byte, ref core.Reference) ([]byte, error) {
	c, err := rc4.NewCipher(objectKey(h.key, ref, false))
	if err != nil {
		return nil, pdferr.Wrap(pdferr.Cipher, err, "RC4")
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out, nil
}

// AESV2Handler decrypts AES-128-CBC data under a per-object key.
type AESV2Handler struct {
	key []byte
}

// NewAESV2Handler creates an AES-128 handler for a file key
func NewAESV2Handler(key []byte) (*AESV2Handler, error) {
	if len(key) == 0 || len(key) > 16 {
		return nil, pdferr.Malformedf("AES-128 key must be 1 to 16 bytes")
	}
	return &AESV2Handler{key: append([]byte(nil), key...)}, nil
}

// Decrypt decrypts data whose first 16 bytes are the IV
func (h *AESV2Handler) Decrypt(data []byte, ref core.Reference) ([]byte, error) {
	return decryptAES(objectKey(h.key, ref, true), data)
}

// AESV3Handler decrypts AES-256-CBC data. The file key is used directly for
// every object.
type AESV3Handler struct {
	key []byte
}

// NewAESV3Handler creates an AES-256 handler
func NewAESV3Handler(key []byte) (*AESV3Handler, error) {
	if len(key) != 32 {
		return nil, pdferr.Malformedf("AES-256 key must be 32 bytes")
	}
	return &AESV3Handler{key: append([]byte(nil), key...)}, nil
}

// Decrypt decrypts data whose first 16 bytes are the IV
func (h *AESV3Handler) Decrypt(data []byte, _ core.Reference) ([]byte, error) {
	return decryptAES(h.key, data)
}

// objectKey derives the key for one object: MD5 of the file key, the low
// three bytes of the object number and low two bytes of the generation
// (little-endian), plus "sAlT" for AES, truncated to len(key)+5 bytes.
func objectKey(key []byte, ref core.Reference, aes bool) []byte {
	h := md5.New()
	h.Write(key)
	h.Write([]byte{byte(ref.Number), byte(ref.Number >> 8), byte(ref.Number >> 16)})
	h.Write([]byte{byte(ref.Generation), byte(ref.Generation >> 8)})
	if aes {
		h.Write([]byte("sAlT"))
	}
	sum := h.Sum(nil)
	n := len(key) + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

// decryptAES decrypts CBC data prefixed by its IV and strips the PKCS#7
// padding. A lone IV decrypts to nothing.
func decryptAES(key, data []byte) ([]byte, error) {
	if len(data) < aes.BlockSize {
		return nil, pdferr.Malformedf("Ciphertext not a multiple of 16")
	}
	iv, body := data[:aes.BlockSize], data[aes.BlockSize:]
	if len(body) == 0 {
		return []byte{}, nil
	}
	if len(body)%aes.BlockSize != 0 {
		return nil, pdferr.Malformedf("Ciphertext not a multiple of 16")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.Cipher, err, "AES")
	}
	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)
	return unpadPKCS7(out)
}

func unpadPKCS7(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, pdferr.New(pdferr.Cipher, "invalid AES padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, pdferr.New(pdferr.Cipher, "invalid AES padding")
		}
	}
	return data[:len(data)-n], nil
}
