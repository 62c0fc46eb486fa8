package config

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Solana: SolanaConfig{
			RPCURL: "https://api.mainnet-beta.solana.com",
		},
		Ethereum: EthereumConfig{
			RPCURL:  "https://ethereum-rpc.publicnode.com",
			ChainID: 1,
		},
		Wallet: WalletConfig{
			Encrypt: false,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
