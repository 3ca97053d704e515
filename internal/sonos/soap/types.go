package soap

import (
	"net"
	"strconv"
)

// Service identifies a Sonos UPnP service.
type Service string

const (
	ServiceAVTransport      Service = "AVTransport"
	ServiceRenderingControl Service = "RenderingControl"
)

var serviceTypes = map[Service]string{
	ServiceAVTransport:      "urn:schemas-upnp-org:service:AVTransport:1",
	ServiceRenderingControl: "urn:schemas-upnp-org:service:RenderingControl:1",
}

var controlPaths = map[Service]string{
	ServiceAVTransport:      "/MediaRenderer/AVTransport/Control",
	ServiceRenderingControl: "/MediaRenderer/RenderingControl/Control",
}

// DefaultPort is the port Sonos players serve UPnP control on.
const DefaultPort = 1400

// Endpoint addresses a single speaker.
type Endpoint struct {
	Host string
	Port int
}

// BaseURL returns the http origin for the endpoint.
func (e Endpoint) BaseURL() string {
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return "http://" + net.JoinHostPort(e.Host, strconv.Itoa(port))
}

// ControlURL returns the control URL for a service on this endpoint.
func (e Endpoint) ControlURL(service Service) string {
	return e.BaseURL() + controlPaths[service]
}

// Arg is a single SOAP action argument. UPnP requires arguments in their
// declared order, so actions pass a slice rather than a map.
type Arg struct {
	Name  string
	Value string
}

// Response is the raw result of a SOAP action.
type Response struct {
	StatusCode int
	Body       []byte
}

// TransportInfo mirrors Sonos GetTransportInfo response.
type TransportInfo struct {
	CurrentTransportState  string
	CurrentTransportStatus string
	CurrentSpeed           string
}

// Playing reports whether the transport state is PLAYING.
func (info TransportInfo) Playing() bool {
	return info.CurrentTransportState == TransportStatePlaying
}

// Transport states reported by AVTransport.
const (
	TransportStatePlaying        = "PLAYING"
	TransportStatePausedPlayback = "PAUSED_PLAYBACK"
	TransportStateStopped        = "STOPPED"
	TransportStateTransitioning  = "TRANSITIONING"
	TransportStateNoMediaPresent = "NO_MEDIA_PRESENT"
)

// VolumeInfo mirrors Sonos GetVolume response.
type VolumeInfo struct {
	CurrentVolume int
}
