// Package wiring registers every command and query handler and wraps the buses in the
// middleware pipeline.
package wiring

import (
	"log/slog"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	availabilityapp "rento/internal/app/handlers/availability"
	bookingapp "rento/internal/app/handlers/booking"
	listingapp "rento/internal/app/handlers/listings"
	meapp "rento/internal/app/handlers/me"
	reviewsapp "rento/internal/app/handlers/reviews"
	"rento/internal/app/middleware"
	"rento/internal/app/outbox"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
)

type Deps struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Clock       clock.Clock
	Images      listingapp.ImageStore
	Idempotency middleware.IdempotencyStore
	Validator   middleware.Validator
	Logger      *slog.Logger
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func Build(d Deps) Buses {
	if d.Encoder == nil {
		d.Encoder = outbox.JSONEventEncoder{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	cmds := commands.NewRegistry()
	registerCommands(cmds, d)
	qs := queries.NewRegistry()
	registerQueries(qs, d)

	return Buses{
		Commands: middleware.ChainCommands(
			cmds,
			middleware.Authorization(middleware.ActorRequired{}),
			middleware.Validation(d.Validator),
			middleware.Idempotency(d.Idempotency, middleware.JSONResultCodec{}, d.Logger),
			middleware.OutboxFlush(d.Outbox, d.Logger),
			middleware.Transaction(d.UoWFactory, nil),
		),
		Queries: middleware.ChainQueries(
			qs,
			middleware.QueryAuthorization(middleware.ActorRequired{}),
			middleware.QueryValidation(d.Validator),
		),
	}
}

func registerCommands(r *commands.Registry, d Deps) {
	log := d.Logger
	commands.Register(r, bookingapp.CreateBookingKey, &bookingapp.CreateBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, bookingapp.CancelBookingKey, &bookingapp.CancelBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, bookingapp.ConfirmBookingKey, &bookingapp.ConfirmBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})

	commands.Register(r, listingapp.CreateListingKey, &listingapp.CreateListingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, listingapp.UpdateListingKey, &listingapp.UpdateListingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, listingapp.DeleteListingKey, &listingapp.DeleteListingHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, listingapp.UploadListingImageKey, &listingapp.UploadListingImageHandler{
		UoWFactory: d.UoWFactory, Images: d.Images, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})

	commands.Register(r, reviewsapp.SubmitReviewKey, &reviewsapp.SubmitReviewHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, reviewsapp.UpdateReviewKey, &reviewsapp.UpdateReviewHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, reviewsapp.DeleteReviewKey, &reviewsapp.DeleteReviewHandler{
		UoWFactory: d.UoWFactory, Outbox: d.Outbox, Encoder: d.Encoder, Clock: d.Clock, Logger: log,
	})

	commands.Register(r, meapp.UpdateProfileKey, &meapp.UpdateProfileHandler{
		UoWFactory: d.UoWFactory, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, meapp.AddFavoriteKey, &meapp.AddFavoriteHandler{
		UoWFactory: d.UoWFactory, Clock: d.Clock, Logger: log,
	})
	commands.Register(r, meapp.RemoveFavoriteKey, &meapp.RemoveFavoriteHandler{
		UoWFactory: d.UoWFactory, Logger: log,
	})
}

func registerQueries(r *queries.Registry, d Deps) {
	queries.Register(r, bookingapp.ListBookingsKey, &bookingapp.ListBookingsHandler{UoWFactory: d.UoWFactory})
	queries.Register(r, bookingapp.GetBookingKey, &bookingapp.GetBookingHandler{UoWFactory: d.UoWFactory})

	queries.Register(r, listingapp.SearchCatalogKey, &listingapp.SearchCatalogHandler{UoWFactory: d.UoWFactory})
	queries.Register(r, listingapp.GetOverviewKey, &listingapp.GetOverviewHandler{UoWFactory: d.UoWFactory})
	queries.Register(r, listingapp.ListOwnerListingsKey, &listingapp.ListOwnerListingsHandler{UoWFactory: d.UoWFactory})
	queries.Register(r, listingapp.QuoteStayKey, &listingapp.QuoteStayHandler{UoWFactory: d.UoWFactory, Clock: d.Clock})
	queries.Register(r, availabilityapp.GetCalendarKey, &availabilityapp.GetCalendarHandler{UoWFactory: d.UoWFactory, Clock: d.Clock})

	queries.Register(r, reviewsapp.ListListingReviewsKey, &reviewsapp.ListListingReviewsHandler{UoWFactory: d.UoWFactory})
	queries.Register(r, reviewsapp.ListUserReviewsKey, &reviewsapp.ListUserReviewsHandler{UoWFactory: d.UoWFactory})

	queries.Register(r, meapp.GetProfileKey, &meapp.GetProfileHandler{UoWFactory: d.UoWFactory})
	queries.Register(r, meapp.ListFavoritesKey, &meapp.ListFavoritesHandler{UoWFactory: d.UoWFactory})
}
