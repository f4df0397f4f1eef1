// Package keyring manages the data-protection keys used to encrypt
// authentication cookies.
//
// Keys are scoped to an application name so several hosts sharing a store can
// decrypt each other's cookies. A Manager hands out the newest unexpired key
// and mints a replacement once the active key reaches the end of its
// lifetime. Persistence is delegated to a Store; MemoryStore and RedisStore
// are provided.
package keyring
