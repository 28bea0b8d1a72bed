// Package secrets loads the decoder's build-time-provisioned key
// material: the encoder's Ed25519 public key, the per-decoder ID-wrapping
// key, the two key-tree side constants, and the build-time channel-0
// subscription slot (spec §6).
//
// The firmware links this material in as linker-patched const arrays; this
// implementation's stand-in is a provisioning file loaded once at startup
// (see cmd/decoder), read with viper the way the rest of the ambient
// configuration is.
package secrets

import (
	"encoding/hex"
	"fmt"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/keytree"
	"github.com/ectf-pp/decoder/pkg/subscription"
	"github.com/spf13/viper"
)

// Secrets holds the decoder's provisioned key material and its build-time
// default subscription.
type Secrets struct {
	EncoderPubKey [ectfcrypto.SignatureKeySize]byte
	IDKey         [ectfcrypto.AEADKeySize]byte
	LeftTreeKey   [ectfcrypto.TreeSideConstSize]byte
	RightTreeKey  [ectfcrypto.TreeSideConstSize]byte
	Channel0      subscription.Slot
}

func decodeHexField(v *viper.Viper, key string, out []byte) error {
	raw := v.GetString(key)
	if raw == "" {
		return fmt.Errorf("secrets: missing required field %q", key)
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("secrets: field %q is not valid hex: %w", key, err)
	}
	if len(decoded) != len(out) {
		return fmt.Errorf("secrets: field %q is %d bytes, want %d", key, len(decoded), len(out))
	}
	copy(out, decoded)
	return nil
}

// Load reads provisioned secrets from path using viper, auto-detecting
// format from the file extension (YAML, TOML, and JSON are all idiomatic
// choices; the provisioning pipeline that produces this file is free to
// pick).
func Load(path string) (*Secrets, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("secrets: reading %s: %w", path, err)
	}

	s := &Secrets{}
	fields := []struct {
		key string
		out []byte
	}{
		{"encoder_pubkey", s.EncoderPubKey[:]},
		{"id_key", s.IDKey[:]},
		{"left_tree_key", s.LeftTreeKey[:]},
		{"right_tree_key", s.RightTreeKey[:]},
	}
	for _, f := range fields {
		if err := decodeHexField(v, f.key, f.out); err != nil {
			return nil, err
		}
	}

	channel := v.GetUint32("channel0.channel")
	start := v.GetUint64("channel0.start")
	end := v.GetUint64("channel0.end")
	vertices := keytree.CoveringSet(start, end)
	if len(vertices) > subscription.MaxTreeKeys {
		return nil, fmt.Errorf("secrets: channel0 range needs %d tree keys, max is %d",
			len(vertices), subscription.MaxTreeKeys)
	}

	var rootKey [ectfcrypto.TreeKeySize]byte
	if err := decodeHexField(v, "channel0.root_tree_key", rootKey[:]); err != nil {
		return nil, err
	}

	s.Channel0 = subscription.Slot{
		Channel:  channel,
		Start:    start,
		End:      end,
		KeyCount: uint32(len(vertices)),
		Magic:    subscription.CommitMagic,
	}
	if err := decodeHexField(v, "channel0.kch", s.Channel0.Kch[:]); err != nil {
		return nil, err
	}
	for i := range vertices {
		copy(s.Channel0.KTree[i][:], rootKey[:])
	}

	return s, nil
}
