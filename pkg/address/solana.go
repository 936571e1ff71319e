package address

import "github.com/btcsuite/btcd/btcutil/base58"

// IsValidSolanaAddress 校验 Solana 地址的语法合法性
// Solana 地址是 32 字节公钥的 Base58 编码, 编码后长度在 32~44 字符之间。
// 这里只做语法校验; 地址是否真实存在由提现网关判断。
func IsValidSolanaAddress(addr string) bool {
	if len(addr) < 32 || len(addr) > 44 {
		return false
	}
	decoded := base58.Decode(addr)
	return len(decoded) == 32
}
