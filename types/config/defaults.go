package config

import (
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
)

const (
	DefaultHTTPPort         = 8080
	DefaultStorageDriver    = FileSystem
	DefaultMarkerDir        = "/var/www/html/iva"
	DefaultIdentityDriver   = "postgres"
	DefaultParentID         = 10
	DefaultBusyStaleAfter   = constants.BusyStaleAfter
	DefaultSerialDevice     = "/dev/serial/by-id/usb-1a86_USB_Serial-if00-port0"
	DefaultBaudRate         = 9600
	DefaultResetDelay       = 2 * time.Second
	DefaultPollInterval     = time.Second
	DefaultMinDoneDelay     = 2 * time.Second
	DefaultPaidCheckEvery   = 5
	DefaultPaymentTimeout   = 5 * time.Second
	DefaultRabbitMQExchange = "pushup.audit"
	DefaultRabbitMQQueue    = "pushup.audit"
)
