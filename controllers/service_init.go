package controllers

import (
	"os"

	"github.com/retailkart/promokart/config"
	"github.com/retailkart/promokart/repository"
	"github.com/retailkart/promokart/services"
)

var (
	campaignRepo    *repository.CampaignRepository
	entitlementRepo *repository.EntitlementRepository
	referralRepo    *repository.ReferralRepository

	evaluator       *services.Evaluator
	issuanceService *services.IssuanceService
	redemptionSvc   *services.RedemptionService
	referralSvc     *services.ReferralService
)

// InitServices wires the engine over the shared database handle. Must be
// called after config.InitDB.
func InitServices() {
	db := config.DB

	campaignRepo = repository.NewCampaignRepository(db)
	entitlementRepo = repository.NewEntitlementRepository(db)
	referralRepo = repository.NewReferralRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	notifier := repository.NewEmailNotifier(db)

	evaluator = services.NewEvaluator(entitlementRepo, referralRepo, purchaseRepo)
	qr := services.NewQRCodec(os.Getenv("QR_SECRET"))
	codes := services.NewCodeGenerator()

	issuanceService = services.NewIssuanceService(campaignRepo, entitlementRepo, customerRepo, evaluator, codes, qr, notifier)
	redemptionSvc = services.NewRedemptionService(campaignRepo, entitlementRepo, customerRepo, storeRepo, qr, notifier)
	referralSvc = services.NewReferralService(referralRepo, issuanceService, notifier)
}
