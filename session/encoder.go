package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// CurrentSchemaVersion is written by Encode.
	CurrentSchemaVersion uint8 = 2

	schemaVersionV1 uint8 = 1
)

var errUnsupportedSchema = errors.New("unsupported session schema version")

// ErrCorrupt wraps every Decode failure. A record that fails with it will
// never decode and can be discarded.
var ErrCorrupt = errors.New("corrupt session record")

// Encode serializes a state in the current schema.
//
// Layout (v2): version u8 | token u16+bytes | userID u8+bytes |
// providerID u8+bytes | verified u8 | savedAt i64 | strategy u8+bytes |
// providerType u8+bytes.
func Encode(s *State) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil state")
	}
	var buf bytes.Buffer
	buf.WriteByte(CurrentSchemaVersion)

	if len(s.AccessToken) > math.MaxUint16 {
		return nil, errors.New("access token too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(s.AccessToken))); err != nil {
		return nil, err
	}
	buf.WriteString(s.AccessToken)

	if err := writeShort(&buf, "userID", s.UserID); err != nil {
		return nil, err
	}
	if err := writeShort(&buf, "identityProviderID", s.IdentityProviderID); err != nil {
		return nil, err
	}

	if s.IsVerified {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	if err := binary.Write(&buf, binary.BigEndian, s.SavedAt); err != nil {
		return nil, err
	}

	// v2 fields
	if err := writeShort(&buf, "strategy", s.Strategy); err != nil {
		return nil, err
	}
	if err := writeShort(&buf, "identityProviderType", s.IdentityProviderType); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses any supported schema version. v1 records migrate with an
// empty strategy and provider type. Errors wrap [ErrCorrupt].
func Decode(data []byte) (*State, error) {
	s, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return s, nil
}

func decode(data []byte) (*State, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != CurrentSchemaVersion && version != schemaVersionV1 {
		return nil, fmt.Errorf("%w: %d", errUnsupportedSchema, version)
	}

	s := &State{SchemaVersion: CurrentSchemaVersion}

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	s.AccessToken = string(token)

	if s.UserID, err = readShort(reader); err != nil {
		return nil, err
	}
	if s.IdentityProviderID, err = readShort(reader); err != nil {
		return nil, err
	}

	verified, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	s.IsVerified = verified == 1

	if err := binary.Read(reader, binary.BigEndian, &s.SavedAt); err != nil {
		return nil, err
	}

	if version == CurrentSchemaVersion {
		if s.Strategy, err = readShort(reader); err != nil {
			return nil, err
		}
		if s.IdentityProviderType, err = readShort(reader); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func writeShort(buf *bytes.Buffer, field, v string) error {
	if len(v) > 255 {
		return fmt.Errorf("%s too long", field)
	}
	buf.WriteByte(byte(len(v)))
	buf.WriteString(v)
	return nil
}

func readShort(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
