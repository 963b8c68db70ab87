// Package di contains dependency injection tokens for the schedule context.
package di

import (
	"github.com/fd1az/rewards-distributor/business/schedule/app"
	"github.com/fd1az/rewards-distributor/internal/di"
)

var Driver = di.NewToken[*app.Driver]("schedule.Driver")

func GetDriver(c di.ServiceRegistry) *app.Driver {
	return di.GetToken(c, Driver)
}
