package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// ValidationError 校验失败时按字段聚合的错误，key 为 JSON 字段路径
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, message := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, message))
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

// newPayloadValidator 创建上报数据校验器，错误消息按 JSON 字段名输出
func newPayloadValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()

	// 错误信息中使用 json tag 里的字段名，而不是 Go 结构体字段名
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, trans)

	return validate, trans
}

// fieldErrors 把 validator 的错误转成按字段路径聚合的 ValidationError
func fieldErrors(err error, trans ut.Translator) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		// Namespace 形如 SnapshotPayload.asset_info.cpu，去掉根结构体名
		path := fieldError.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		fields[path] = fieldError.Translate(trans)
	}
	return &ValidationError{Fields: fields}
}
