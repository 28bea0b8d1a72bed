package main

import (
	"crypto/ed25519"
	"fmt"

	"github.com/spf13/cobra"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/decode"
	"github.com/ectf-pp/decoder/pkg/keytree"
	"github.com/ectf-pp/decoder/pkg/subscription"
)

var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Emit a signed, doubly-encrypted frame packet for a timestamp within a covering set",
	RunE:  runFrame,
}

func init() {
	frameCmd.Flags().Uint32("channel", 0, "Channel number")
	frameCmd.Flags().Uint64("timestamp", 0, "Timestamp the frame is for")
	frameCmd.Flags().Uint64("sub-start", 0, "Start of the covering subscription's time range")
	frameCmd.Flags().Uint64("sub-end", 0, "End of the covering subscription's time range")
	frameCmd.Flags().String("kch", "", "Per-channel symmetric key, hex-encoded (32 bytes)")
	frameCmd.Flags().String("root-key", "", "Root tree key used to build the covering set, hex-encoded (16 bytes)")
	frameCmd.Flags().BytesHex("payload", nil, "Plaintext frame bytes (max 64)")
	frameCmd.Flags().String("out", "-", "Output file, or - for stdout")
}

func runFrame(cmd *cobra.Command, args []string) error {
	channel, _ := cmd.Flags().GetUint32("channel")
	ts, _ := cmd.Flags().GetUint64("timestamp")
	subStart, _ := cmd.Flags().GetUint64("sub-start")
	subEnd, _ := cmd.Flags().GetUint64("sub-end")
	payload, _ := cmd.Flags().GetBytesHex("payload")
	if len(payload) > decode.MaxFrameSize {
		return fmt.Errorf("payload is %d bytes, max is %d", len(payload), decode.MaxFrameSize)
	}

	encoderKeyHex, _ := cmd.Flags().GetString("encoder-key")
	priv, err := loadPrivateKey(encoderKeyHex)
	if err != nil {
		return err
	}

	kchHex, _ := cmd.Flags().GetString("kch")
	kch, err := decodeFixed(kchHex, ectfcrypto.AEADKeySize)
	if err != nil {
		return fmt.Errorf("--kch: %w", err)
	}

	rootKeyHex, _ := cmd.Flags().GetString("root-key")
	rootKey, err := decodeFixed(rootKeyHex, ectfcrypto.TreeKeySize)
	if err != nil {
		return fmt.Errorf("--root-key: %w", err)
	}

	vertices := keytree.CoveringSet(subStart, subEnd)
	slot := &subscription.Slot{Start: subStart, End: subEnd, KeyCount: uint32(len(vertices))}
	for i := range vertices {
		copy(slot.KTree[i][:], rootKey)
	}

	index, vertex, ok := keytree.KeyIndexForTime(slot, ts)
	if !ok {
		return fmt.Errorf("timestamp %d is outside [%d,%d]", ts, subStart, subEnd)
	}
	treeKey, err := keytree.DeriveTreeKey(ts, slot.KTree[index][:], vertex)
	if err != nil {
		return err
	}

	frameData := &decode.FrameData{Length: uint32(len(payload))}
	copy(frameData.Frame[:], payload)
	innerCt, err := ectfcrypto.AEADEncrypt(frameData.Encode(), treeKey)
	if err != nil {
		return err
	}

	frameCh := &decode.FrameCh{Timestamp: ts}
	copy(frameCh.Ciphertext[:], innerCt)
	outerCt, err := ectfcrypto.AEADEncrypt(frameCh.Encode(), kch)
	if err != nil {
		return err
	}

	packet := &decode.FramePacket{ChannelID: channel}
	copy(packet.EncFrame[:], outerCt)
	sig := ed25519.Sign(priv, packet.Encode()[:decode.PayloadSize])
	copy(packet.Signature[:], sig)

	return writeOutput(cmd, packet.Encode())
}
