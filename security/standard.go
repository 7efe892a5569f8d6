package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/pdferr"
)

// passwordPad pads or replaces user-supplied passwords for revisions 2-4.
var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// Params holds the entries of a Standard security handler's encryption
// dictionary.
type Params struct {
	V               int
	R               int
	Length          int // key length in bits
	O, U            []byte
	OE, UE          []byte
	P               int32
	EncryptMetadata bool
	CF              core.Dict
	StmF, StrF      string
}

// ParseParams reads an encryption dictionary. Only the Standard filter is
// supported.
func ParseParams(dict core.Dict) (*Params, error) {
	if filter, _ := dict.GetName("Filter"); filter != "Standard" {
		return nil, pdferr.Unsupportedf("unsupported encryption filter %s", filter)
	}

	p := &Params{EncryptMetadata: true, StmF: "Identity", StrF: "Identity"}
	if v, ok := dict.GetInt("V"); ok {
		p.V = int(v)
	}
	r, ok := dict.GetInt("R")
	if !ok {
		return nil, pdferr.Malformedf("encryption dictionary missing R")
	}
	p.R = int(r)
	if p.V < 1 || p.V > 5 || p.V == 3 {
		return nil, pdferr.Unsupportedf("unsupported encryption version %d", p.V)
	}
	if p.R < 2 || p.R > 6 {
		return nil, pdferr.Unsupportedf("unsupported security handler revision %d", p.R)
	}

	p.Length = 40
	if p.V == 4 {
		p.Length = 128
	}
	if p.V == 5 {
		p.Length = 256
	}
	if l, ok := dict.GetInt("Length"); ok && p.V != 5 {
		p.Length = int(l)
	}
	if p.Length%8 != 0 || p.Length < 40 || p.Length > 256 {
		return nil, pdferr.Malformedf("invalid encryption key length %d", p.Length)
	}

	o, ok1 := dict.GetString("O")
	u, ok2 := dict.GetString("U")
	if !ok1 || !ok2 {
		return nil, pdferr.Malformedf("encryption dictionary missing O or U")
	}
	p.O, p.U = o.Bytes(), u.Bytes()
	if oe, ok := dict.GetString("OE"); ok {
		p.OE = oe.Bytes()
	}
	if ue, ok := dict.GetString("UE"); ok {
		p.UE = ue.Bytes()
	}
	if perm, ok := dict.GetInt("P"); ok {
		p.P = int32(perm)
	}
	if em, ok := dict.GetBool("EncryptMetadata"); ok {
		p.EncryptMetadata = bool(em)
	}
	if p.V >= 4 {
		p.CF, _ = dict.GetDict("CF")
		if name, ok := dict.GetName("StmF"); ok {
			p.StmF = string(name)
		}
		if name, ok := dict.GetName("StrF"); ok {
			p.StrF = string(name)
		}
	}

	if p.R <= 4 && (len(p.O) < 32 || len(p.U) < 32) {
		return nil, pdferr.Malformedf("O and U must be 32 bytes")
	}
	if p.R >= 5 && (len(p.O) < 48 || len(p.U) < 48) {
		return nil, pdferr.Malformedf("O and U must be 48 bytes")
	}
	return p, nil
}

// Standard decrypts a document protected by the Standard security
// handler.
type Standard struct {
	params  *Params
	key     []byte
	owner   bool
	strings Handler
	streams Handler
	filters map[string]Handler
}

// NewStandardHandler authenticates password against an encryption
// dictionary, trying it first as the user password and then as the owner
// password. fileID is the first element of the trailer's ID array.
func NewStandardHandler(dict core.Dict, fileID []byte, password string) (*Standard, error) {
	params, err := ParseParams(dict)
	if err != nil {
		return nil, err
	}

	var key []byte
	owner := false
	if params.R >= 5 {
		key, owner, err = authenticateAES256(params, []byte(password))
	} else {
		key, owner, err = authenticateLegacy(params, fileID, []byte(password))
	}
	if err != nil {
		return nil, err
	}

	s := &Standard{params: params, key: key, owner: owner, filters: map[string]Handler{}}
	if params.V < 4 {
		rc, err := NewRC4Handler(key)
		if err != nil {
			return nil, err
		}
		s.strings, s.streams = rc, rc
		return s, nil
	}

	if s.strings, err = s.filter(params.StrF); err != nil {
		return nil, err
	}
	if s.streams, err = s.filter(params.StmF); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the file encryption key
func (s *Standard) Key() []byte { return s.key }

// Owner reports whether the owner password authenticated
func (s *Standard) Owner() bool { return s.owner }

// Params returns the parsed encryption dictionary
func (s *Standard) Params() *Params { return s.params }

// DecryptString decrypts a string with the StrF crypt filter
func (s *Standard) DecryptString(data []byte, ref core.Reference) ([]byte, error) {
	return s.strings.Decrypt(data, ref)
}

// DecryptStream decrypts stream data. The stream's own Crypt filter wins
// over StmF, and XRef streams are never encrypted. Metadata streams stay
// in the clear when EncryptMetadata is false.
func (s *Standard) DecryptStream(stream *core.Stream, ref core.Reference) ([]byte, error) {
	typ, _ := stream.Dict.GetName("Type")
	if typ == "XRef" {
		return stream.Data, nil
	}
	if typ == "Metadata" && !s.params.EncryptMetadata {
		return stream.Data, nil
	}

	names := stream.Filters()
	for i, name := range names {
		if name != "Crypt" {
			continue
		}
		cf := "Identity"
		params := cryptParams(stream.Dict, i)
		if n, ok := params.GetName("Name"); ok {
			cf = string(n)
		}
		h, err := s.filter(cf)
		if err != nil {
			return nil, err
		}
		return h.Decrypt(stream.Data, ref)
	}
	return s.streams.Decrypt(stream.Data, ref)
}

func cryptParams(dict core.Dict, index int) core.Dict {
	switch p := dict.Get("DecodeParms").(type) {
	case core.Dict:
		return p
	case core.Array:
		if d, ok := p.Get(index).(core.Dict); ok {
			return d
		}
	}
	return core.Dict{}
}

// filter returns the handler for a named crypt filter from CF
func (s *Standard) filter(name string) (Handler, error) {
	if name == "Identity" {
		return NullHandler{}, nil
	}
	if h, ok := s.filters[name]; ok {
		return h, nil
	}

	cf, ok := s.params.CF.GetDict(name)
	if !ok {
		return nil, pdferr.Malformedf("crypt filter %s not defined", name)
	}
	method, _ := cf.GetName("CFM")

	var h Handler
	var err error
	switch method {
	case "", "None":
		h = NullHandler{}
	case "V2":
		h, err = NewRC4Handler(s.key)
	case "AESV2":
		h, err = NewAESV2Handler(s.key)
	case "AESV3":
		h, err = NewAESV3Handler(s.key)
	default:
		return nil, pdferr.Unsupportedf("unsupported crypt filter method %s", method)
	}
	if err != nil {
		return nil, err
	}
	s.filters[name] = h
	return h, nil
}

// authenticateLegacy handles revisions 2 to 4.
func authenticateLegacy(p *Params, fileID, password []byte) ([]byte, bool, error) {
	if key := legacyKey(p, fileID, password); checkUserKey(p, fileID, key) {
		return key, false, nil
	}

	userPassword := ownerToUserPassword(p, password)
	if key := legacyKey(p, fileID, userPassword); checkUserKey(p, fileID, key) {
		return key, true, nil
	}
	return nil, false, pdferr.New(pdferr.Encrypted, "invalid password")
}

// legacyKey computes the file key from a user password.
func legacyKey(p *Params, fileID, password []byte) []byte {
	n := p.Length / 8
	if p.R == 2 {
		n = 5
	}

	h := md5.New()
	h.Write(padPassword(password))
	h.Write(p.O[:32])
	var perm [4]byte
	binary.LittleEndian.PutUint32(perm[:], uint32(p.P))
	h.Write(perm[:])
	h.Write(fileID)
	if p.R >= 4 && !p.EncryptMetadata {
		h.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}
	key := h.Sum(nil)

	if p.R >= 3 {
		for i := 0; i < 50; i++ {
			sum := md5.Sum(key[:n])
			key = sum[:]
		}
	}
	return key[:n]
}

// computeU produces the U entry a key would generate.
func computeU(p *Params, fileID, key []byte) []byte {
	if p.R == 2 {
		return rc4Apply(key, passwordPad)
	}

	h := md5.New()
	h.Write(passwordPad)
	h.Write(fileID)
	u := rc4Apply(key, h.Sum(nil))
	for i := 1; i <= 19; i++ {
		u = rc4Apply(xorKey(key, byte(i)), u)
	}
	return u
}

func checkUserKey(p *Params, fileID, key []byte) bool {
	u := computeU(p, fileID, key)
	if p.R == 2 {
		return bytes.Equal(u, p.U[:32])
	}
	return bytes.Equal(u[:16], p.U[:16])
}

// ownerKey hashes an owner password into the RC4 key guarding O.
func ownerKey(p *Params, password []byte) []byte {
	n := p.Length / 8
	if p.R == 2 {
		n = 5
	}
	sum := md5.Sum(padPassword(password))
	key := sum[:]
	if p.R >= 3 {
		for i := 0; i < 50; i++ {
			sum = md5.Sum(key)
			key = sum[:]
		}
	}
	return key[:n]
}

// ownerToUserPassword recovers the padded user password from O.
func ownerToUserPassword(p *Params, password []byte) []byte {
	key := ownerKey(p, password)
	if p.R == 2 {
		return rc4Apply(key, p.O[:32])
	}
	out := append([]byte(nil), p.O[:32]...)
	for i := 19; i >= 0; i-- {
		out = rc4Apply(xorKey(key, byte(i)), out)
	}
	return out
}

// authenticateAES256 handles revisions 5 and 6.
func authenticateAES256(p *Params, password []byte) ([]byte, bool, error) {
	if len(password) > 127 {
		password = password[:127]
	}
	u := p.U[:48]

	if bytes.Equal(hashAES256(p.R, password, p.U[32:40], nil), p.U[:32]) {
		key, err := unwrapKey(hashAES256(p.R, password, p.U[40:48], nil), p.UE)
		return key, false, err
	}
	if bytes.Equal(hashAES256(p.R, password, p.O[32:40], u), p.O[:32]) {
		key, err := unwrapKey(hashAES256(p.R, password, p.O[40:48], u), p.OE)
		return key, true, err
	}
	return nil, false, pdferr.New(pdferr.Encrypted, "invalid password")
}

// unwrapKey decrypts UE or OE, AES-256-CBC with a zero IV and no padding.
func unwrapKey(key, wrapped []byte) ([]byte, error) {
	if len(wrapped) != 32 {
		return nil, pdferr.Malformedf("OE and UE must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.Cipher, err, "AES")
	}
	out := make([]byte, 32)
	cipher.NewCBCDecrypter(block, make([]byte, aes.BlockSize)).CryptBlocks(out, wrapped)
	return out, nil
}

// hashAES256 is SHA-256 for revision 5 and the iterated hash of
// ISO 32000-2 algorithm 2.B for revision 6.
func hashAES256(r int, password, salt, userKey []byte) []byte {
	h := sha256.New()
	h.Write(password)
	h.Write(salt)
	h.Write(userKey)
	k := h.Sum(nil)
	if r < 6 {
		return k
	}

	for round := 0; ; {
		seq := make([]byte, 0, len(password)+len(k)+len(userKey))
		seq = append(seq, password...)
		seq = append(seq, k...)
		seq = append(seq, userKey...)
		k1 := bytes.Repeat(seq, 64)

		block, _ := aes.NewCipher(k[:16])
		e := make([]byte, len(k1))
		cipher.NewCBCEncrypter(block, k[16:32]).CryptBlocks(e, k1)

		sum := 0
		for _, b := range e[:16] {
			sum += int(b)
		}
		switch sum % 3 {
		case 0:
			s := sha256.Sum256(e)
			k = s[:]
		case 1:
			s := sha512.Sum384(e)
			k = s[:]
		default:
			s := sha512.Sum512(e)
			k = s[:]
		}

		round++
		if round >= 64 && int(e[len(e)-1]) <= round-32 {
			break
		}
	}
	return k[:32]
}

func padPassword(password []byte) []byte {
	out := make([]byte, 32)
	n := copy(out, password)
	copy(out[n:], passwordPad)
	return out
}

func xorKey(key []byte, x byte) []byte {
	out := make([]byte, len(key))
	for i, b := range key {
		out[i] = b ^ x
	}
	return out
}

func rc4Apply(key, data []byte) []byte {
	c, _ := rc4.NewCipher(key)
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out
}
