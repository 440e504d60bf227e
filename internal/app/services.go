package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/appointment"
	"github.com/Alijeyrad/medibook_backend/internal/service/booking"
	"github.com/Alijeyrad/medibook_backend/internal/service/doctor"
	"github.com/Alijeyrad/medibook_backend/internal/service/notification"
	"github.com/Alijeyrad/medibook_backend/pkg/email"
	"github.com/Alijeyrad/medibook_backend/pkg/observability"
	"github.com/Alijeyrad/medibook_backend/pkg/realtime"
	"github.com/Alijeyrad/medibook_backend/pkg/sms"
	"github.com/Alijeyrad/medibook_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideNotificationService,
		ProvideDoctorService,
		ProvideBookingService,
		ProvideAppointmentService,
	),
)

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func ProvideNotificationService(
	mailer *email.Client,
	smsCli *sms.Client,
	rt *realtime.Broadcaster,
	metrics *observability.BookingMetrics,
	cfg *config.Config,
) notification.Service {
	return notification.New(notification.Params{
		Mailer:      mailer,
		SMS:         smsCli,
		Broadcaster: rt,
		Metrics:     metrics,
		CodeTTL:     minutes(cfg.Booking.OTPTTLMinutes),
	})
}

func ProvideDoctorService(db *repo.Client, cfg *config.Config) doctor.Service {
	return doctor.New(doctor.Params{
		Store:    db,
		Hasher:   password.NewHasher(password.FromCentralConfig(cfg.Password)),
		LinkBase: cfg.Booking.BookingLinkBase,
	})
}

func ProvideBookingService(
	db *repo.Client,
	rdb *redis.Client,
	notify notification.Service,
	metrics *observability.BookingMetrics,
	cfg *config.Config,
) booking.Service {
	return booking.New(booking.Params{
		Store:    db,
		Pending:  booking.NewRedisPendingStore(rdb),
		Notifier: notify,
		Metrics:  metrics,
		Config: booking.Config{
			CodeTTL:     minutes(cfg.Booking.OTPTTLMinutes),
			PendingTTL:  minutes(cfg.Booking.PendingTTLMinutes),
			PhoneRegion: cfg.SMS.DefaultRegion,
		},
	})
}

func ProvideAppointmentService(db *repo.Client, notify notification.Service) appointment.Service {
	return appointment.New(db, notify)
}
