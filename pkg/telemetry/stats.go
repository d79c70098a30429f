// Package telemetry publishes link counters over MQTT.
package telemetry

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/mculink/pkg/link"
)

// LinkStats is the wire form of link.Stats, see stats.proto.
type LinkStats struct {
	LinkId               string   `protobuf:"bytes,1,opt,name=link_id,json=linkId,proto3" json:"link_id,omitempty"`
	TimestampMs          int64    `protobuf:"varint,2,opt,name=timestamp_ms,json=timestampMs,proto3" json:"timestamp_ms,omitempty"`
	Frames               uint64   `protobuf:"varint,3,opt,name=frames,proto3" json:"frames,omitempty"`
	Acks                 uint64   `protobuf:"varint,4,opt,name=acks,proto3" json:"acks,omitempty"`
	Nacks                uint64   `protobuf:"varint,5,opt,name=nacks,proto3" json:"nacks,omitempty"`
	ChecksumErrors       uint64   `protobuf:"varint,6,opt,name=checksum_errors,json=checksumErrors,proto3" json:"checksum_errors,omitempty"`
	LengthErrors         uint64   `protobuf:"varint,7,opt,name=length_errors,json=lengthErrors,proto3" json:"length_errors,omitempty"`
	UnknownOpcodes       uint64   `protobuf:"varint,8,opt,name=unknown_opcodes,json=unknownOpcodes,proto3" json:"unknown_opcodes,omitempty"`
	StoreErrors          uint64   `protobuf:"varint,9,opt,name=store_errors,json=storeErrors,proto3" json:"store_errors,omitempty"`
	Timeouts             uint64   `protobuf:"varint,10,opt,name=timeouts,proto3" json:"timeouts,omitempty"`
	Overruns             uint64   `protobuf:"varint,11,opt,name=overruns,proto3" json:"overruns,omitempty"`
	TransmitErrors       uint64   `protobuf:"varint,12,opt,name=transmit_errors,json=transmitErrors,proto3" json:"transmit_errors,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func init() {
	proto.RegisterType((*LinkStats)(nil), "mculink.telemetry.v1.LinkStats")
}

// Reset implements proto.Message.
func (m *LinkStats) Reset() { *m = LinkStats{} }

// String implements proto.Message.
func (m *LinkStats) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*LinkStats) ProtoMessage() {}

// NewLinkStats converts counters of a link.
func NewLinkStats(linkID string, at time.Time, s link.Stats) *LinkStats {
	return &LinkStats{
		LinkId:         linkID,
		TimestampMs:    at.UnixNano() / int64(time.Millisecond),
		Frames:         s.Frames,
		Acks:           s.Acks,
		Nacks:          s.Nacks,
		ChecksumErrors: s.ChecksumErrors,
		LengthErrors:   s.LengthErrors,
		UnknownOpcodes: s.UnknownOpcodes,
		StoreErrors:    s.StoreErrors,
		Timeouts:       s.Timeouts,
		Overruns:       s.Overruns,
		TransmitErrors: s.TransmitErrors,
	}
}

// Stats converts back to link.Stats.
func (m *LinkStats) Stats() link.Stats {
	return link.Stats{
		Frames:         m.Frames,
		Acks:           m.Acks,
		Nacks:          m.Nacks,
		ChecksumErrors: m.ChecksumErrors,
		LengthErrors:   m.LengthErrors,
		UnknownOpcodes: m.UnknownOpcodes,
		StoreErrors:    m.StoreErrors,
		Timeouts:       m.Timeouts,
		Overruns:       m.Overruns,
		TransmitErrors: m.TransmitErrors,
	}
}

// Time returns the sampling time.
func (m *LinkStats) Time() time.Time {
	return time.Unix(0, m.TimestampMs*int64(time.Millisecond))
}

// DecodeLinkStats decodes a published payload.
func DecodeLinkStats(payload []byte) (*LinkStats, error) {
	var m LinkStats
	if err := proto.Unmarshal(payload, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
