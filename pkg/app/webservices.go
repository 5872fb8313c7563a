package app

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"ledseq/pkg/sequence"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the state of all channels.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		r := app.do(command{action: actionStatus, source: "web"})
		if r.err != nil {
			return webError(r.err)
		}
		return ctx.JSON(r.status)
	}
}

// HandleSequences returns the textual form of all named sequences.
func (app *App) HandleSequences() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request sequences")

		r := app.do(command{action: actionSequences, source: "web"})
		if r.err != nil {
			return webError(r.err)
		}
		return ctx.JSON(r.sequences)
	}
}

// HandleChannel returns the state of a single channel.
func (app *App) HandleChannel() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return app.reply(ctx, command{channel: ctx.Params("name"), action: actionStatus})
	}
}

// HandleAction switches a channel on, off, toggles it or stops its sequence.
func (app *App) HandleAction() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		c, err := parseAction(ctx.Params("action"))
		if err != nil || c.action == actionStart || c.action == actionPlay {
			return fiber.NewError(http.StatusNotFound, "unknown action "+ctx.Params("action"))
		}

		c.channel = ctx.Params("name")
		return app.reply(ctx, c)
	}
}

// HandleStart starts a named sequence on a channel.
func (app *App) HandleStart() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return app.reply(ctx, command{channel: ctx.Params("name"), action: actionStart, name: ctx.Params("sequence")})
	}
}

// HandlePlay starts the sequence in the request body, e.g. "100:on 200:off".
func (app *App) HandlePlay() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		s, err := sequence.Parse(string(ctx.Body()))
		if err != nil {
			return webError(err)
		}
		return app.reply(ctx, command{channel: ctx.Params("name"), action: actionPlay, seq: s})
	}
}

// reply executes c and returns the channel state.
func (app *App) reply(ctx *fiber.Ctx, c command) error {
	debug.InfoLog.Printf("web request %v %v", c.action, c.channel)

	c.source = "web"
	r := app.do(c)
	if r.err != nil {
		return webError(r.err)
	}
	return ctx.JSON(r.status[0])
}

// webError maps the application errors to http status codes.
func webError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownChannel), errors.Is(err, ErrUnknownSequence):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, sequence.ErrInvalidSequence), errors.Is(err, ErrUnknownAction):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrClosed):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	default:
		debug.ErrorLog.Print(err)
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
