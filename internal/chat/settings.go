package chat

import (
	"context"
	"strconv"
	"strings"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/service"
)

func (r *Router) userSettings(req Request) Response {
	token, err := r.tokens.IssueToken("UserSettings", req.UserKey, []string{
		service.ScopeGetUserInfo,
		service.ScopeManageUserInfo,
		service.ScopeGetUsageData,
		service.ScopeDeleteUsageData,
	}, req.RequestID)
	if err != nil {
		return r.unknownError(req, err, "usersettings")
	}

	return Response{Outputs: []Output{CardOutput(Card{
		Title: "내 정보 관리",
		Body:  "아래 버튼을 클릭해 관리 페이지로 접속해 주세요.\n링크는 10분 뒤 만료됩니다.",
		Buttons: []Button{{
			Type:  ButtonWeb,
			Title: "내 정보 관리",
			URL:   r.cfg.SettingsBaseURL + "?token=" + token,
		}},
	})}}
}

func (r *Router) modifyUserInfo(ctx context.Context, req Request) Response {
	if req.Params.Grade == "" || req.Params.Class == "" {
		return textResponse("변경할 학년/반 정보를 입력해 주세요.")
	}
	grade, errG := strconv.Atoi(strings.TrimSpace(req.Params.Grade))
	classNumber, errC := strconv.Atoi(strings.TrimSpace(req.Params.Class))
	if errG != nil || errC != nil {
		return textResponse(msgInvalidNumber)
	}

	if _, err := r.store.Upsert(ctx, req.UserKey, grade, classNumber); err != nil {
		return r.unknownError(req, err, "modifyuserinfo")
	}
	return textResponse("저장되었습니다.")
}
