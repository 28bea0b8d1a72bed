package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/keytree"
	"github.com/ectf-pp/decoder/pkg/subscription"
	"github.com/ectf-pp/decoder/pkg/subupdate"
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Emit a signed, ID-key-encrypted subscription update package",
	RunE:  runSubscription,
}

func init() {
	subscriptionCmd.Flags().Uint32("channel", 0, "Channel number (must not be 0)")
	subscriptionCmd.Flags().Uint64("start", 0, "First timestamp covered, inclusive")
	subscriptionCmd.Flags().Uint64("end", 0, "Last timestamp covered, inclusive")
	subscriptionCmd.Flags().Uint32("decoder-id", 0, "Target decoder id")
	subscriptionCmd.Flags().String("id-key", "", "Decoder's ID key, hex-encoded (32 bytes)")
	subscriptionCmd.Flags().String("root-key", "", "Root tree key to fan out across the covering set, hex-encoded (16 bytes)")
	subscriptionCmd.Flags().String("kch", "", "Per-channel symmetric key, hex-encoded (32 bytes); random if omitted")
	subscriptionCmd.Flags().String("out", "-", "Output file, or - for stdout")
}

func runSubscription(cmd *cobra.Command, args []string) error {
	channel, _ := cmd.Flags().GetUint32("channel")
	if channel == 0 {
		return fmt.Errorf("--channel must not be 0")
	}
	start, _ := cmd.Flags().GetUint64("start")
	end, _ := cmd.Flags().GetUint64("end")
	decoderID, _ := cmd.Flags().GetUint32("decoder-id")

	encoderKeyHex, _ := cmd.Flags().GetString("encoder-key")
	priv, err := loadPrivateKey(encoderKeyHex)
	if err != nil {
		return err
	}

	idKeyHex, _ := cmd.Flags().GetString("id-key")
	idKey, err := decodeFixed(idKeyHex, ectfcrypto.AEADKeySize)
	if err != nil {
		return fmt.Errorf("--id-key: %w", err)
	}

	rootKeyHex, _ := cmd.Flags().GetString("root-key")
	rootKey, err := decodeFixed(rootKeyHex, ectfcrypto.TreeKeySize)
	if err != nil {
		return fmt.Errorf("--root-key: %w", err)
	}

	kchHex, _ := cmd.Flags().GetString("kch")
	var kch []byte
	if kchHex == "" {
		kch = make([]byte, ectfcrypto.AEADKeySize)
		if _, err := rand.Read(kch); err != nil {
			return err
		}
	} else {
		kch, err = decodeFixed(kchHex, ectfcrypto.AEADKeySize)
		if err != nil {
			return fmt.Errorf("--kch: %w", err)
		}
	}

	vertices := keytree.CoveringSet(start, end)
	if len(vertices) > subscription.MaxTreeKeys {
		return fmt.Errorf("range [%d,%d] needs %d tree keys, max is %d", start, end, len(vertices), subscription.MaxTreeKeys)
	}

	slot := &subscription.Slot{
		Channel:  channel,
		Start:    start,
		End:      end,
		KeyCount: uint32(len(vertices)),
		Magic:    subscription.CommitMagic,
	}
	copy(slot.Kch[:], kch)
	for i := range vertices {
		copy(slot.KTree[i][:], rootKey)
	}

	ct, err := ectfcrypto.AEADEncrypt(slot.Encode(), idKey)
	if err != nil {
		return err
	}

	pkg := &subupdate.Package{DecoderID: decoderID}
	copy(pkg.Ciphertext[:], ct)
	sig := ed25519.Sign(priv, pkg.Encode()[:subupdate.PayloadSize])
	copy(pkg.Signature[:], sig)

	return writeOutput(cmd, pkg.Encode())
}

func decodeFixed(hexStr string, size int) ([]byte, error) {
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, err
	}
	if len(decoded) != size {
		return nil, fmt.Errorf("got %d bytes, want %d", len(decoded), size)
	}
	return decoded, nil
}

func writeOutput(cmd *cobra.Command, data []byte) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
