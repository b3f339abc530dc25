package wechat

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// MakeSign 生成支付签名
// 签名步骤一：按字典序排序参数；二：key1=value1&key2=value2 拼接并追加 &key=商户KEY；
// 三：MD5；四：全部转大写。
// 空值参数由调用方剔除，不要传空字符串进来。
func MakeSign(params map[string]string, key string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	b.WriteString("&key=")
	b.WriteString(key)

	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// JsSign 生成 js-sdk 使用签名
// 与 MakeSign 不同：字段顺序固定（jsapi_ticket、noncestr、timestamp、url），
// 值不做转义，SHA-1 小写十六进制。两种签名算法不可合并。
// 返回签名和参与签名的原串，原串用于前端排错。
func JsSign(ticket, nonceStr string, timestamp int64, pageURL string) (signature, rawString string) {
	rawString = fmt.Sprintf("jsapi_ticket=%s&noncestr=%s&timestamp=%d&url=%s", ticket, nonceStr, timestamp, pageURL)
	sum := sha1.Sum([]byte(rawString))
	return hex.EncodeToString(sum[:]), rawString
}
