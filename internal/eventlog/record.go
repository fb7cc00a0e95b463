package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"

	"github.com/pkg/errors"
)

// Record encoding: uvarint headerLen | header | payload | crc32c(header|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ErrCorrupt is returned for entries whose framing or checksum is invalid.
var ErrCorrupt = errors.New("eventlog: corrupt record")

// headerLen is the fixed header: at_ms (8B BE) | action (1B).
const headerLen = 9

func encodeFrame(header, payload []byte) []byte {
	out := make([]byte, 0, binary.MaxVarintLen64+len(header)+len(payload)+4)
	out = binary.AppendUvarint(out, uint64(len(header)))
	out = append(out, header...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	return binary.BigEndian.AppendUint32(out, crc)
}

func decodeFrame(b []byte) (header, payload []byte, ok bool) {
	hl, n := binary.Uvarint(b)
	if n <= 0 || len(b) < n+4 || hl > uint64(len(b)-n-4) {
		return nil, nil, false
	}
	end := n + int(hl)
	header = b[n:end]
	payload = b[end : len(b)-4]
	crc := crc32.Update(0, castagnoli, header)
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return nil, nil, false
	}
	return header, payload, true
}

type body struct {
	Kind  string   `json:"kind"`
	IDs   []string `json:"ids"`
	Label string   `json:"label,omitempty"`
}

// EncodeEvent frames e for storage. Seq is carried by the key, not the value.
func EncodeEvent(e Event) ([]byte, error) {
	payload, err := json.Marshal(body{Kind: e.Kind, IDs: e.IDs, Label: e.Label})
	if err != nil {
		return nil, err
	}
	header := make([]byte, 0, headerLen)
	header = binary.BigEndian.AppendUint64(header, uint64(e.AtMs))
	header = append(header, byte(e.Action))
	return encodeFrame(header, payload), nil
}

// DecodeEvent parses a stored value. The returned event has no Seq.
func DecodeEvent(b []byte) (Event, error) {
	header, payload, ok := decodeFrame(b)
	if !ok || len(header) != headerLen {
		return Event{}, ErrCorrupt
	}
	var bd body
	if err := json.Unmarshal(payload, &bd); err != nil {
		return Event{}, errors.Wrap(ErrCorrupt, err.Error())
	}
	return Event{
		AtMs:   int64(binary.BigEndian.Uint64(header[:8])),
		Action: Action(header[8]),
		Kind:   bd.Kind,
		IDs:    bd.IDs,
		Label:  bd.Label,
	}, nil
}

// timestampOf reads at_ms without decoding the payload.
func timestampOf(b []byte) (int64, bool) {
	header, _, ok := decodeFrame(b)
	if !ok || len(header) != headerLen {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(header[:8])), true
}
