package ledger

var (
	recordPrefix  = []byte("idx/")
	reversePrefix = []byte("ids/")
	kindPrefix    = []byte("kinds/")
)

// recordKey builds idx/<kind>/<id>.
func recordKey(kind, id string) []byte {
	k := make([]byte, 0, len(recordPrefix)+len(kind)+1+len(id))
	k = append(k, recordPrefix...)
	k = append(k, kind...)
	k = append(k, '/')
	k = append(k, id...)
	return k
}

// recordKindPrefix builds idx/<kind>/.
func recordKindPrefix(kind string) []byte {
	k := make([]byte, 0, len(recordPrefix)+len(kind)+1)
	k = append(k, recordPrefix...)
	k = append(k, kind...)
	return append(k, '/')
}

// reverseKey builds ids/<id>; the value is the kind.
func reverseKey(id string) []byte {
	k := make([]byte, 0, len(reversePrefix)+len(id))
	k = append(k, reversePrefix...)
	return append(k, id...)
}

// kindKey builds kinds/<kind>.
func kindKey(kind string) []byte {
	k := make([]byte, 0, len(kindPrefix)+len(kind))
	k = append(k, kindPrefix...)
	return append(k, kind...)
}
