/*
Package format is the root of the packages that define how records are
serialized for storage or for exchange between processes that may run
different revisions of the same software.

  - envelope: the version and length header that frames each record and lets
    readers skip fields they do not know
  - parcel: the in-memory buffer the records are written to and read from,
    with its primitive field encodings
  - codecs: streams of parcels behind the generic Codec interfaces

The wire format of a record is

	<int32 version><int32 payload-length><payload>

with all integers in little-endian byte order. Payloads may contain further
records.
*/
package format
