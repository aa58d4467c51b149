package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// maxStatusLength bounds the status response a server may send.
const maxStatusLength = 1 << 20

// statusResponse is the JSON body of a status reply. Forge servers list
// their mods under modinfo (1.7 to 1.12) or forgeData (1.13+).
type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	ModInfo *struct {
		ModList []struct {
			ModID   string `json:"modid"`
			Version string `json:"version"`
		} `json:"modList"`
	} `json:"modinfo"`
	ForgeData *struct {
		Mods []struct {
			ModID  string `json:"modId"`
			Marker string `json:"modmarker"`
		} `json:"mods"`
	} `json:"forgeData"`
}

// Ping performs a server list ping against addr and returns the advertised
// version and mods.
func Ping(ctx context.Context, addr domain.ServerAddress) (domain.ServerStatus, error) {
	address := addr.String()
	status := domain.ServerStatus{Address: address}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return status, fmt.Errorf("connecting to %s: %w", address, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	port := addr.Port
	if port == 0 {
		port = 25565
	}
	var handshake bytes.Buffer
	writeVarInt(&handshake, 0x00)
	writeVarInt(&handshake, -1)
	writeString(&handshake, addr.Host)
	binary.Write(&handshake, binary.BigEndian, uint16(port))
	writeVarInt(&handshake, 1)

	var out bytes.Buffer
	writePacket(&out, handshake.Bytes())
	writePacket(&out, []byte{0x00})
	if _, err := conn.Write(out.Bytes()); err != nil {
		return status, fmt.Errorf("sending status request: %w", err)
	}

	r := bufio.NewReader(conn)
	length, err := readVarInt(r)
	if err != nil {
		return status, fmt.Errorf("reading status length: %w", err)
	}
	if length <= 0 || length > maxStatusLength {
		return status, fmt.Errorf("invalid status packet length %d", length)
	}
	body := io.LimitReader(r, int64(length))
	br := bufio.NewReader(body)
	id, err := readVarInt(br)
	if err != nil {
		return status, fmt.Errorf("reading packet id: %w", err)
	}
	if id != 0x00 {
		return status, fmt.Errorf("unexpected packet id %#x", id)
	}
	n, err := readVarInt(br)
	if err != nil {
		return status, fmt.Errorf("reading status body: %w", err)
	}
	if n < 0 || n > maxStatusLength {
		return status, fmt.Errorf("invalid status body length %d", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(br, payload); err != nil {
		return status, fmt.Errorf("reading status body: %w", err)
	}

	var resp statusResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return status, fmt.Errorf("parsing status: %w", err)
	}
	status.Version = resp.Version.Name
	status.Protocol = resp.Version.Protocol
	status.PingedAt = time.Now()
	if resp.ModInfo != nil {
		for _, m := range resp.ModInfo.ModList {
			status.Mods = append(status.Mods, domain.ServerMod{ModID: m.ModID, Version: m.Version})
		}
	}
	if resp.ForgeData != nil {
		for _, m := range resp.ForgeData.Mods {
			status.Mods = append(status.Mods, domain.ServerMod{ModID: m.ModID, Version: m.Marker})
		}
	}
	return status, nil
}

func writePacket(w *bytes.Buffer, payload []byte) {
	writeVarInt(w, int32(len(payload)))
	w.Write(payload)
}

func writeString(w *bytes.Buffer, s string) {
	writeVarInt(w, int32(len(s)))
	w.WriteString(s)
}

func writeVarInt(w *bytes.Buffer, v int32) {
	u := uint32(v)
	for {
		if u&^0x7f == 0 {
			w.WriteByte(byte(u))
			return
		}
		w.WriteByte(byte(u&0x7f | 0x80))
		u >>= 7
	}
}

func readVarInt(r io.ByteReader) (int32, error) {
	var u uint32
	for shift := 0; shift < 35; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		u |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return int32(u), nil
		}
	}
	return 0, errors.New("varint too long")
}
