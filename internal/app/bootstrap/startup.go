// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	auditstore "github.com/dalemusser/learnhub/internal/app/store/audit"
	notificationstore "github.com/dalemusser/learnhub/internal/app/store/notifications"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/catalogcache"
	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/app/system/mediaupload"
	"github.com/dalemusser/learnhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup builds the long-lived services once DB connections and schema
// setup are done: audit logger, upload chain, catalog cache, event
// publisher, and the notification workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svc := deps.services
	db := deps.MongoDatabase

	svc.audit = auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Admin:      appCfg.AuditLogAdmin,
		Enrollment: appCfg.AuditLogEnrollment,
	})

	svc.uploads = buildUploadChain(ctx, appCfg, deps, logger)
	svc.cache = catalogcache.New(deps.redisCmdable(), appCfg.CatalogTTL, logger, deps.Metrics)

	notes := notificationstore.New(db)
	svc.notifier = workers.NewNotifier(notes, deps.NATS, logger)
	if err := svc.notifier.Start(); err != nil {
		logger.Error("notifier start failed", zap.Error(err))
		return err
	}
	if deps.NATS != nil {
		svc.publisher = events.NewNATSPublisher(deps.NATS, deps.Metrics)
	} else {
		svc.publisher = svc.notifier
	}

	svc.pruner = workers.NewNotificationPrune(notes, logger, appCfg.NotificationPruneInterval, appCfg.NotificationRetention)
	svc.pruner.Start()

	return nil
}

// buildUploadChain orders the configured providers: the hosted media API
// first, then the object store. An object store that cannot be reached at
// startup is left out.
func buildUploadChain(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) *mediaupload.Chain {
	var uploaders []mediaupload.Uploader

	hostCfg := mediaupload.MediaHostConfig{
		BaseURL:      appCfg.MediaHostBaseURL,
		CloudName:    appCfg.MediaHostCloudName,
		UploadPreset: appCfg.MediaHostUploadPreset,
	}
	if hostCfg.Enabled() {
		uploaders = append(uploaders, mediaupload.NewMediaHost(hostCfg, nil))
	}

	storeCfg := mediaupload.ObjectStoreConfig{
		Endpoint:  appCfg.ObjectStoreEndpoint,
		AccessKey: appCfg.ObjectStoreAccessKey,
		SecretKey: appCfg.ObjectStoreSecretKey,
		Bucket:    appCfg.ObjectStoreBucket,
		UseSSL:    appCfg.ObjectStoreUseSSL,
		PublicURL: appCfg.ObjectStorePublicURL,
	}
	if storeCfg.Enabled() {
		store, err := mediaupload.NewObjectStore(ctx, storeCfg, logger)
		if err != nil {
			logger.Warn("object store unavailable; skipping upload fallback", zap.Error(err))
		} else {
			uploaders = append(uploaders, store)
		}
	}

	if len(uploaders) == 0 {
		logger.Warn("no upload providers configured; uploads will fail")
	}
	return mediaupload.NewChain(logger, uploaders, mediaupload.WithObserver(deps.Metrics.UploadAttempt))
}
