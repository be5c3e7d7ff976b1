package platform

import "time"

// DefaultAppName identifies the sender to the notification service.
const DefaultAppName = "TextureMixer"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName defaults to DefaultAppName.
	AppName string
	// IconPath, when non-empty, points to an image file shown with the
	// notification where the platform supports it.
	IconPath string
	// Timeout of zero lets the platform decide.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}
