package api

import (
	"time"

	models "SimuTrade/internal/domain/models"
	domrepo "SimuTrade/internal/domain/repository"
	"SimuTrade/internal/usecase"
	xhttp "SimuTrade/pkg/http"
	xlogger "SimuTrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionsEchoHandler exposes the analysis and prediction endpoints.
type PredictionsEchoHandler struct {
	logger *xlogger.Logger
	driver *usecase.Driver
}

func NewPredictionsEchoHandler(logger *xlogger.Logger, driver *usecase.Driver) *PredictionsEchoHandler {
	return &PredictionsEchoHandler{logger: logger, driver: driver}
}

func (h *PredictionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/predictions", h.Predictions)
	g.GET("/predictions/summary", h.Summary)
	g.GET("/price", h.Price)
	g.GET("/timeframes", h.Timeframes)
}

// Analyze runs one on-demand analysis cycle, opening a prediction when
// the fused decision is directional.
func (h *PredictionsEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.Timeframe)

	res, err := h.driver.Analyze(c.Request().Context(), tf)
	if err != nil {
		h.logger.Error("analyze failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("analysis cycle failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// Predictions returns the ledger, newest first.
func (h *PredictionsEchoHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.driver.Predictions(req.State, req.Limit))
}

// Summary returns the accuracy/profit report.
func (h *PredictionsEchoHandler) Summary(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.driver.Stats())
}

type priceResponse struct {
	Price float64   `json:"price"`
	At    time.Time `json:"at"`
}

// Price returns the last live price seen on the trade stream.
func (h *PredictionsEchoHandler) Price(c echo.Context) error {
	price, at := h.driver.LastPrice()
	if price <= 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no live price yet"))
	}
	return xhttp.SuccessResponse(c, priceResponse{Price: price, At: at})
}

type timeframeInfo struct {
	Timeframe string `json:"timeframe"`
	Horizon   string `json:"horizon"`
}

// Timeframes lists supported prediction horizons.
func (h *PredictionsEchoHandler) Timeframes(c echo.Context) error {
	out := make([]timeframeInfo, 0, 4)
	for _, tf := range domrepo.Timeframes() {
		out = append(out, timeframeInfo{
			Timeframe: string(tf),
			Horizon:   domrepo.Horizon(tf).String(),
		})
	}
	return xhttp.SuccessResponse(c, out)
}
