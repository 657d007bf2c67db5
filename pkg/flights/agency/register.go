package agency

import (
	"github.com/iPurya/SkySniper/pkg/flights"
)

func init() {
	// Register all booking-site sources
	flights.Register("alibaba", NewAlibabaSource)
	flights.Register("ataair", NewAtaairSource)
	flights.Register("mrbilit", NewMrbilitSource)
}
