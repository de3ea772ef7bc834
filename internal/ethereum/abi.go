package ethereum

import (
	"io"
	"strings"
)

// Minimal ABIs for the AMM pool, the custody vault and ERC20, only the
// methods we call.

func mustPoolABI() io.Reader {
	return strings.NewReader(`[
		{
			"name": "getReserves",
			"type": "function",
			"stateMutability": "view",
			"inputs": [],
			"outputs": [
				{"name": "reserve0", "type": "uint256"},
				{"name": "reserve1", "type": "uint256"}
			]
		},
		{
			"name": "token0",
			"type": "function",
			"stateMutability": "view",
			"inputs": [],
			"outputs": [{"name": "", "type": "address"}]
		},
		{
			"name": "isToken0Native",
			"type": "function",
			"stateMutability": "view",
			"inputs": [],
			"outputs": [{"name": "", "type": "bool"}]
		},
		{
			"name": "swap",
			"type": "function",
			"stateMutability": "payable",
			"inputs": [
				{"name": "amount0Out", "type": "uint256"},
				{"name": "amount1Out", "type": "uint256"},
				{"name": "recipient",  "type": "address"}
			],
			"outputs": []
		}
	]`)
}

func mustVaultABI() io.Reader {
	return strings.NewReader(`[
		{
			"name": "enableAutomation",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "maxDailySpend",  "type": "uint256"},
				{"name": "maxSingleTrade", "type": "uint256"},
				{"name": "tokens",         "type": "address[]"},
				{"name": "allowances",     "type": "uint256[]"}
			],
			"outputs": []
		},
		{
			"name": "disableAutomation",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [],
			"outputs": []
		},
		{
			"name": "updateSpendingLimits",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "maxDailySpend",  "type": "uint256"},
				{"name": "maxSingleTrade", "type": "uint256"}
			],
			"outputs": []
		},
		{
			"name": "addApprovedToken",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "token",     "type": "address"},
				{"name": "allowance", "type": "uint256"}
			],
			"outputs": []
		},
		{
			"name": "removeApprovedToken",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [{"name": "token", "type": "address"}],
			"outputs": []
		},
		{
			"name": "depositFunds",
			"type": "function",
			"stateMutability": "payable",
			"inputs": [
				{"name": "token",  "type": "address"},
				{"name": "amount", "type": "uint256"}
			],
			"outputs": []
		},
		{
			"name": "withdrawFunds",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "token",  "type": "address"},
				{"name": "amount", "type": "uint256"}
			],
			"outputs": []
		},
		{
			"name": "getUserConfig",
			"type": "function",
			"stateMutability": "view",
			"inputs": [{"name": "user", "type": "address"}],
			"outputs": [
				{"name": "enabled",        "type": "bool"},
				{"name": "maxDailySpend",  "type": "uint256"},
				{"name": "maxSingleTrade", "type": "uint256"}
			]
		},
		{
			"name": "getTokenAllowance",
			"type": "function",
			"stateMutability": "view",
			"inputs": [
				{"name": "user",  "type": "address"},
				{"name": "token", "type": "address"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "getAvailableBalance",
			"type": "function",
			"stateMutability": "view",
			"inputs": [
				{"name": "user",  "type": "address"},
				{"name": "token", "type": "address"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "isAutomationEnabled",
			"type": "function",
			"stateMutability": "view",
			"inputs": [{"name": "user", "type": "address"}],
			"outputs": [{"name": "", "type": "bool"}]
		}
	]`)
}

func mustERC20ABI() io.Reader {
	return strings.NewReader(`[
		{
			"name": "balanceOf",
			"type": "function",
			"stateMutability": "view",
			"inputs": [{"name": "_owner", "type": "address"}],
			"outputs": [{"name": "balance", "type": "uint256"}]
		},
		{
			"name": "allowance",
			"type": "function",
			"stateMutability": "view",
			"inputs": [
				{"name": "_owner",   "type": "address"},
				{"name": "_spender", "type": "address"}
			],
			"outputs": [{"name": "", "type": "uint256"}]
		},
		{
			"name": "approve",
			"type": "function",
			"stateMutability": "nonpayable",
			"inputs": [
				{"name": "_spender", "type": "address"},
				{"name": "_value",   "type": "uint256"}
			],
			"outputs": [{"name": "", "type": "bool"}]
		},
		{
			"name": "decimals",
			"type": "function",
			"stateMutability": "view",
			"inputs": [],
			"outputs": [{"name": "", "type": "uint8"}]
		},
		{
			"name": "symbol",
			"type": "function",
			"stateMutability": "view",
			"inputs": [],
			"outputs": [{"name": "", "type": "string"}]
		}
	]`)
}
