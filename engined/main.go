package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/substrate"
	"github.com/cloudx-io/sealedbid/validation"
)

type serverConfig struct {
	transport  string // "vsock" inside an enclave, "tcp" otherwise
	port       uint32
	maxWorkers int
}

// Helper functions for required environment variable parsing
func getRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

func getRequiredEnvInt(key string) (int, error) {
	value, err := getRequiredEnv(key)
	if err != nil {
		return 0, err
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %s (must be a valid integer)", key, value)
	}

	log.Printf("INFO: Using %s=%d from environment", key, intValue)
	return intValue, nil
}

func getRequiredEnvAmount(key string) (uint64, error) {
	value, err := getRequiredEnv(key)
	if err != nil {
		return 0, err
	}

	units, err := auctionapi.ParseAmount(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}

	log.Printf("INFO: Using %s=%s from environment", key, value)
	return units, nil
}

func loadConfig() (serverConfig, core.Config, error) {
	transport := os.Getenv("ENGINE_TRANSPORT")
	if transport == "" {
		transport = "tcp"
	}
	if transport != "tcp" && transport != "vsock" {
		return serverConfig{}, core.Config{}, fmt.Errorf("invalid ENGINE_TRANSPORT: %s (must be tcp or vsock)", transport)
	}

	port, err := getRequiredEnvInt("ENGINE_PORT")
	if err != nil {
		return serverConfig{}, core.Config{}, err
	}
	maxWorkers, err := getRequiredEnvInt("ENGINE_MAX_WORKERS")
	if err != nil {
		return serverConfig{}, core.Config{}, err
	}

	auctionID, err := getRequiredEnv("ENGINE_AUCTION_ID")
	if err != nil {
		return serverConfig{}, core.Config{}, err
	}
	operator, err := getRequiredEnv("ENGINE_OPERATOR")
	if err != nil {
		return serverConfig{}, core.Config{}, err
	}
	item, err := getRequiredEnv("ENGINE_ITEM")
	if err != nil {
		return serverConfig{}, core.Config{}, err
	}
	minimumBid, err := getRequiredEnvAmount("ENGINE_MINIMUM_BID")
	if err != nil {
		return serverConfig{}, core.Config{}, err
	}
	deposit, err := getRequiredEnvAmount("ENGINE_DEPOSIT")
	if err != nil {
		return serverConfig{}, core.Config{}, err
	}

	srvCfg := serverConfig{
		transport:  transport,
		port:       uint32(port),
		maxWorkers: maxWorkers,
	}
	auctionCfg := core.Config{
		AuctionID:       auctionID,
		Operator:        operator,
		Item:            item,
		MinimumBid:      minimumBid,
		DepositRequired: deposit,
	}
	return srvCfg, auctionCfg, nil
}

func main() {
	srvCfg, auctionCfg, err := loadConfig()
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	sub, err := substrate.NewSimulated()
	if err != nil {
		log.Fatalf("ERROR: failed to initialize substrate: %v", err)
	}
	log.Printf("INFO: simulated substrate initialized")

	auctionCfg.Substrate = sub
	auctionCfg.Funds = newMemoryLedger()
	auctionCfg.Verifier = &validation.Verifier{PublicKey: sub.PublicKey()}

	auction, err := core.NewAuction(auctionCfg)
	if err != nil {
		log.Fatalf("ERROR: failed to construct auction: %v", err)
	}
	log.Printf("INFO: auction %s constructed for item %s (operator=%s)",
		auctionCfg.AuctionID, auctionCfg.Item, auctionCfg.Operator)

	server := NewEngineServer(srvCfg, auction, sub)
	log.Fatal(server.Start())
}
