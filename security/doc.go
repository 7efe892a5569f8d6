// Package security decrypts the strings and streams of encrypted
// documents.
//
// A [Standard] handler is built from the document's encryption dictionary
// and a password with [NewStandardHandler]. It authenticates the password
// as the user password first and the owner password second, derives the
// file key, then picks a [Handler] for strings and one for streams:
// [RC4Handler] for revisions 2 and 3, and the crypt filter named by StrF
// and StmF for revisions 4 to 6 ([RC4Handler], [AESV2Handler],
// [AESV3Handler] or [NullHandler] for Identity).
//
// RC4 and AES-128 keys are derived per object from the file key and the
// object's number and generation. AES-256 uses the file key directly.
package security
