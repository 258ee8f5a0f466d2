package model

import (
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
)

const (
	ErrorUserEmailEmpty      = 100001
	ErrorUserPasswordEmpty   = 100002
	ErrorUserEmailOrPassword = 100003
	ErrorUserNotExist        = 100004
	ErrorUserForbidden       = 100005
	ErrorUserEmailExist      = 100006
	ErrorParams              = 100007
	ErrorEmptyId             = 100008
	ErrorNewRepo             = 100009
	ErrorMakeToken           = 100010
	ErrorDB                  = 100011
	ErrorTokenInvalid        = 100012
	ErrorSessionRevoked      = 100013
	ErrorNoPermission        = 100014
	ErrorPasswordTooShort    = 100015

	ErrorDocumentNotFound     = 200001
	ErrorDocumentConflict     = 200002
	ErrorDocumentNotOwner     = 200003
	ErrorFileTypeUnsupported  = 200004
	ErrorExtractFailed        = 200005
	ErrorChunkConfigInvalid   = 200006
	ErrorEmbeddingUnavailable = 200007
	ErrorFileSaveFailed       = 200008

	ErrorSearchQueryInvalid  = 300001
	ErrorSearchTypeInvalid   = 300002
	ErrorSearchLimitInvalid  = 300003
	ErrorSearchThreshold     = 300004
	ErrorRagQuestionInvalid  = 300005
	ErrorRagNoContext        = 300006
	ErrorRagGenerationFailed = 300007
)

// 自定义扩展的 http 状态码
const (
	HttpStatusNoPermission = 491 // 无权限
)

var ErrorMessages = map[int]string{
	ErrorUserEmailEmpty:      "邮箱不能为空",
	ErrorUserPasswordEmpty:   "密码不能为空",
	ErrorUserEmailOrPassword: "邮箱或密码错误",
	ErrorUserNotExist:        "用户不存在",
	ErrorUserForbidden:       "账号被锁定",
	ErrorUserEmailExist:      "邮箱已被注册",
	ErrorParams:              "参数错误",
	ErrorEmptyId:             "id 为空",
	ErrorNewRepo:             "新建 repo 失败",
	ErrorMakeToken:           "生成 token 失败",
	ErrorDB:                  "db error",
	ErrorTokenInvalid:        "token 无效或已过期",
	ErrorSessionRevoked:      "会话已失效，请重新登录",
	ErrorNoPermission:        "无权限",
	ErrorPasswordTooShort:    "密码长度不足",

	ErrorDocumentNotFound:     "文档不存在",
	ErrorDocumentConflict:     "文档已被其他请求修改，请重试",
	ErrorDocumentNotOwner:     "无权操作该文档",
	ErrorFileTypeUnsupported:  "不支持的文件类型",
	ErrorExtractFailed:        "文件内容提取失败",
	ErrorChunkConfigInvalid:   "分块参数错误",
	ErrorEmbeddingUnavailable: "embedding 服务不可用",
	ErrorFileSaveFailed:       "文件保存失败",

	ErrorSearchQueryInvalid:  "查询内容长度需在 1~1000 字符之间",
	ErrorSearchTypeInvalid:   "不支持的检索类型",
	ErrorSearchLimitInvalid:  "limit 需在 1~100 之间",
	ErrorSearchThreshold:     "相似度阈值需在 0~1 之间",
	ErrorRagQuestionInvalid:  "问题内容不能为空",
	ErrorRagNoContext:        "没有检索到相关内容",
	ErrorRagGenerationFailed: "答案生成失败",
}

type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	InnerError error  `json:"inner_error"`
}

func (err Error) Error() string {
	return err.Message
}

func (err Error) String() string {
	return err.InnerError.Error()
}

func NewError(code int, innerError error) *Error {
	if innerError != nil {
		var re = regexp.MustCompile(`[\n\t]+`)
		innerErrorString := re.ReplaceAllString(fmt.Sprintf("%+v", innerError), " ")
		log.Errorf("NewError code:%d, message:%s, innerError:%+v\n", code, ErrorMessages[code], innerErrorString)
	}
	return &Error{
		Code:       code,
		Message:    ErrorMessages[code],
		InnerError: nil,
	}
}

func NewErrorWithMessage(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}
