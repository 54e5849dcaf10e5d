package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
)

const pdfContentType = "application/pdf"

type reportApi struct {
	svc      *report.Service
	validate *validator.Validate
}

func registerReportAPI(sg *echo.Group, svc *report.Service, validate *validator.Validate) {
	api := reportApi{svc: svc, validate: validate}

	rg := sg.Group("/report")
	rg.POST("", api.generate)
	rg.GET("", api.retrieve)
	rg.DELETE("", api.discard)
	rg.GET("/preview", api.preview)
	rg.GET("/pdf", api.download)
	rg.POST("/email", api.email)
}

func setContentDisposition(ctx echo.Context, dispType, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", dispType, filename))
}

// Handlers

func (api *reportApi) generate(ctx echo.Context) error {
	status, err := api.svc.Generate(ctx.Request().Context(), ctx.Param("id"))
	reportGenerations.WithLabelValues(generationOutcome(err)).Inc()
	if err != nil {
		return errors.Wrap(err, "generating report")
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	status, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting report")
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *reportApi) discard(ctx echo.Context) error {
	status, err := api.svc.Discard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "discarding report")
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *reportApi) pdf(ctx echo.Context, dispType string) error {
	filename, content, err := api.svc.PDF(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rendering report pdf")
	}
	setContentDisposition(ctx, dispType, filename)
	return ctx.Blob(http.StatusOK, pdfContentType, content)
}

func (api *reportApi) preview(ctx echo.Context) error {
	return api.pdf(ctx, "inline")
}

func (api *reportApi) download(ctx echo.Context) error {
	return api.pdf(ctx, "attachment")
}

func (api *reportApi) email(ctx echo.Context) error {
	var data EmailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailReportRequest")
	}
	to, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	if err := api.svc.Email(ctx.Request().Context(), ctx.Param("id"), to); err != nil {
		return errors.Wrap(err, "emailing report")
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "The report will arrive in the inbox shortly."})
}
