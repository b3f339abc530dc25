package wechat

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// xmlField 有序的 XML 元素，统一下单/订单查询的报文元素顺序与签名参数顺序一致
type xmlField struct {
	Name  string
	Value string
}

// buildRequestXML 按给定顺序拼接 <xml> 请求体，值原样写入（平台侧按 v2 协议解析）
func buildRequestXML(fields []xmlField) string {
	var b strings.Builder
	b.WriteString("<xml>")
	for _, f := range fields {
		fmt.Fprintf(&b, "<%s>%s</%s>", f.Name, f.Value, f.Name)
	}
	b.WriteString("</xml>")
	return b.String()
}

// parseXMLToMap 将平台返回的单层 XML 转为扁平映射，键名全部大写
func parseXMLToMap(doc string) (map[string]string, error) {
	result := make(map[string]string)
	decoder := xml.NewDecoder(strings.NewReader(doc))

	var current string
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse response xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local != "xml" {
				current = strings.ToUpper(t.Name.Local)
			}
		case xml.CharData:
			if current != "" {
				result[current] += string(t)
			}
		case xml.EndElement:
			current = ""
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("parse response xml: empty document")
	}
	return result, nil
}
