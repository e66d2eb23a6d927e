package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/config"
	"feed-scraper/pkg/crawler"
	"feed-scraper/pkg/fetch"
	"feed-scraper/pkg/storage"
	"feed-scraper/pkg/utils"
	"feed-scraper/pkg/vendors"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the application config file")
	vendorKey := flag.String("vendor", "", "Vendor key to crawl (code or code__storefront)")
	logLevelStr := flag.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	envOverride := flag.String("env", "", "Override the configured environment (dev enables debug cutoffs)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(*logLevelStr); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Invalid log level %q, using info", *logLevelStr)
	}
	baseLog := logrus.NewEntry(log)

	if *vendorKey == "" {
		fmt.Fprintln(os.Stderr, "usage: feed-scraper -vendor <key> [-config config.yaml]")
		os.Exit(2)
	}

	if err := run(baseLog, *configPath, *vendorKey, *envOverride); err != nil {
		baseLog.WithField("category", utils.CategorizeError(err)).Fatalf("Crawl failed: %v", err)
	}
}

func run(log *logrus.Entry, configPath, vendorKey, envOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if envOverride != "" {
		cfg.Env = envOverride
	}
	warnings, err := cfg.Validate()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warnf("Config: %s", w)
	}

	vcfg, ok := cfg.Vendors[vendorKey]
	if !ok {
		return fmt.Errorf("%w: no configuration for %q", utils.ErrVendorNotFound, vendorKey)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	directory := vendors.NewDirectory(cfg.DirectoryURL, log)
	info, err := directory.Resolve(ctx, vendorKey)
	if err != nil {
		return err
	}

	registry := vendors.NewRegistry()
	registry.Register(vendors.GenericCode, vendors.NewGeneric)
	registerVendors(registry)

	vendor, err := registry.New(info.Code, vcfg, info, log)
	if errors.Is(err, utils.ErrVendorNotFound) {
		log.WithField("vendor", info.Code).Debug("No dedicated vendor, using generic")
		vendor, err = registry.New(vendors.GenericCode, vcfg, info, log)
	}
	if err != nil {
		return err
	}

	client, err := fetch.NewClient(cfg.HTTPClientSettings, log)
	if err != nil {
		return err
	}
	var proxy *fetch.ProxyConnector
	if vcfg.UseProxy {
		proxy = fetch.NewProxyConnector(client, cfg.ProxyListURLs, cfg.ProxyConnectLimit, log)
	}
	dl := fetch.NewDownloader(ctx, client, vcfg, proxy, log)

	store := storage.NewFileStorage(cfg.OutputBaseDir, info.Key(), info.FeedType, log)
	reports := storage.NewReportStore(cfg.LogsDir, log)

	var hashes *storage.HashStore
	if cfg.EnableChangeTracking {
		hashes, err = storage.NewHashStore(cfg.StateDir, info.Key(), log)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := hashes.Close(); cerr != nil {
				log.Warnf("Closing hash store: %v", cerr)
			}
		}()
	}

	processor := crawler.New(cfg, vcfg, info, vendor, dl, store, reports, hashes, log)
	return processor.Run(ctx)
}

// registerVendors binds dedicated vendor implementations. Vendors without
// an entry here fall back to the selector-driven generic.
func registerVendors(*vendors.Registry) {}
