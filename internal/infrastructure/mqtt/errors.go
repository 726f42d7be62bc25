package mqtt

import "errors"

var (
	ErrNotConnected     = errors.New("mqtt: not connected")
	ErrConnectionFailed = errors.New("mqtt: connect")
	ErrPublishFailed    = errors.New("mqtt: publish")
	ErrSubscribeFailed  = errors.New("mqtt: subscribe")
	ErrTimeout          = errors.New("mqtt: broker did not acknowledge in time")

	// ErrInvalidTopic and ErrInvalidQoS reject a request before it is sent.
	ErrInvalidTopic = errors.New("mqtt: empty topic")
	ErrInvalidQoS   = errors.New("mqtt: qos above 2")
)
