package utils

import "crypto/rand"

const randChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandString 生成长度为 n 的随机字符串
// 用作签名的 nonce_str，要求不可预测、不重复，不要求密码学强度
func RandString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("rand source unavailable: " + err.Error())
	}
	for i := range b {
		b[i] = randChars[int(b[i])%len(randChars)]
	}
	return string(b)
}
