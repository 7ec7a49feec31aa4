package handlers

import (
	"github.com/labstack/echo/v4"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/api/handlers/common"
	"github/smartkit/relay/internal/api/handlers/project"
	"github/smartkit/relay/internal/api/handlers/transaction"
	"github/smartkit/relay/internal/api/handlers/wallet"
)

// AttachAllRoutes registers every route of the service on the server's
// router groups.
func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		common.GetMetricsRoute(s),

		wallet.PostCreateWalletRoute(s),
		wallet.GetWalletRoute(s),
		wallet.GetWalletListRoute(s),

		transaction.PostSendTransactionRoute(s),
		transaction.PostSendBatchRoute(s),
		transaction.GetTransactionRoute(s),
		transaction.GetTransactionListRoute(s),

		project.GetStatsRoute(s),
	}
}
