// Package rtc builds a WebRTC peer connection around the local camera
// stream. The peer is never wired to a signaling counterpart; it only
// mirrors the stream's track shape so a transport could attach later.
package rtc

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/emyildirim/meetweb/internal/media"
)

type Peer struct {
	pc       *webrtc.PeerConnection
	streamID string
}

func DefaultConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// NewPeer creates a peer connection carrying one local track per track
// of the given stream.
func NewPeer(cfg webrtc.Configuration, stream media.Stream) (*Peer, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	p := &Peer{pc: pc, streamID: stream.ID()}

	for _, t := range stream.Tracks() {
		local, err := localTrackFor(t.Kind(), stream.ID())
		if err != nil {
			p.Close()
			return nil, err
		}
		if _, err := pc.AddTrack(local); err != nil {
			p.Close()
			return nil, err
		}
	}

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("stream", p.streamID).Str("peer_connection_state", s.String()).Msg("peer state")
	})

	log.Info().Str("module", "rtc").Str("stream", p.streamID).Int("tracks", len(stream.Tracks())).Msg("peer created, signaling not attached")
	return p, nil
}

func localTrackFor(kind media.TrackKind, streamID string) (*webrtc.TrackLocalStaticRTP, error) {
	codec := webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}
	if kind == media.TrackVideo {
		codec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}
	}
	return webrtc.NewTrackLocalStaticRTP(codec, string(kind), streamID)
}

func (p *Peer) Close() {
	if p.pc == nil {
		return
	}
	if err := p.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "rtc").Str("stream", p.streamID).Msg("close error")
		return
	}
	log.Info().Str("module", "rtc").Str("stream", p.streamID).Msg("peer closed")
}
