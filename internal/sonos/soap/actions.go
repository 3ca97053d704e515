package soap

import (
	"context"
	"strconv"
)

// Transport Actions
func (c *Client) GetTransportInfo(ctx context.Context) (TransportInfo, Response, error) {
	resp, err := c.ExecuteAction(ctx, ServiceAVTransport, "GetTransportInfo", []Arg{
		{Name: "InstanceID", Value: "0"},
	})
	if err != nil {
		return TransportInfo{}, resp, err
	}
	return parseTransportInfo(resp.Body), resp, nil
}

func (c *Client) Play(ctx context.Context) (Response, error) {
	return c.ExecuteAction(ctx, ServiceAVTransport, "Play", []Arg{
		{Name: "InstanceID", Value: "0"},
		{Name: "Speed", Value: "1"},
	})
}

func (c *Client) Pause(ctx context.Context) (Response, error) {
	return c.ExecuteAction(ctx, ServiceAVTransport, "Pause", []Arg{
		{Name: "InstanceID", Value: "0"},
	})
}

// RenderingControl Actions
func (c *Client) GetVolume(ctx context.Context) (VolumeInfo, Response, error) {
	resp, err := c.ExecuteAction(ctx, ServiceRenderingControl, "GetVolume", []Arg{
		{Name: "InstanceID", Value: "0"},
		{Name: "Channel", Value: "Master"},
	})
	if err != nil {
		return VolumeInfo{}, resp, err
	}
	info, err := parseVolume(resp.Body)
	if err != nil {
		return VolumeInfo{}, resp, &MalformedResponseError{Action: "GetVolume", Element: "CurrentVolume", Err: err}
	}
	return info, resp, nil
}

func (c *Client) SetVolume(ctx context.Context, level int) (Response, error) {
	return c.ExecuteAction(ctx, ServiceRenderingControl, "SetVolume", []Arg{
		{Name: "InstanceID", Value: "0"},
		{Name: "Channel", Value: "Master"},
		{Name: "DesiredVolume", Value: strconv.Itoa(level)},
	})
}
