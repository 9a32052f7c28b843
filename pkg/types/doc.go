/*
Package types defines the core data model shared by every tiercache package.

The central type is Entry, the immutable (value, createdAt, expiresAt) record
every cache layer and store operates on. Entries carry their own validity:
an entry is valid while the current time is before its expiration, and
permanent when it has no expiration at all.

Entries serialize to the stable JSON envelope used by persistent stores:

	{
	  "value": <json-encodable>,
	  "createdAt": "2024-01-15T10:30:00Z",
	  "expiresAt": "2024-01-15T11:30:00Z"
	}

expiresAt is omitted for permanent entries. Timestamps are RFC 3339 with
nanosecond precision, so an Entry round-trips through JSON unchanged.
*/
package types
