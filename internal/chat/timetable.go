package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const msgInvalidNumber = "올바른 숫자를 입력해 주세요."

func (r *Router) timetable(ctx context.Context, req Request) Response {
	suggestToRegister := false
	var grade, classNumber int

	if req.Params.Grade != "" && req.Params.Class != "" {
		g, errG := strconv.Atoi(strings.TrimSpace(req.Params.Grade))
		c, errC := strconv.Atoi(strings.TrimSpace(req.Params.Class))
		if errG != nil || errC != nil {
			return textResponse(msgInvalidNumber)
		}
		grade, classNumber = g, c
		if req.Platform == PlatformKakao {
			suggestToRegister = true
		}
	} else {
		pref, err := r.store.Get(ctx, req.UserKey)
		if err != nil {
			return r.unknownError(req, err, "timetable")
		}
		if pref == nil {
			if req.Platform == PlatformKakao {
				return Response{Outputs: []Output{CardOutput(Card{
					Title: "사용자 정보를 찾을 수 없습니다.",
					Body: "\"내 정보 관리\"를 눌러 학년/반 정보를 등록 하시거나, " +
						"\"1학년 1반 시간표 알려줘\"와 같이 조회할 학년/반을 직접 언급해 주세요.",
					Buttons: []Button{{Type: ButtonMessage, Title: "내 정보 관리"}},
				})}}
			}
			return textResponse("사용자 정보를 찾을 수 없습니다. \"내 정보 관리\"를 눌러 학년/반 정보를 등록해 주세요.")
		}
		grade, classNumber = pref.Grade, pref.ClassNumber
	}

	if req.Params.Range != nil {
		return textResponse("정확한 날짜를 입력해주세요.\n현재 시간표조회에서는 여러날짜 조회를 지원하지 않습니다.")
	}
	if req.Params.Date == nil {
		return textResponse("언제의 시간표를 조회하시겠어요?")
	}

	timetable, err := r.source.Timetable(ctx, grade, classNumber, *req.Params.Date)
	if err != nil {
		if isConnectivity(err) {
			return textResponse("시간표 서버에 연결하지 못했습니다.\n요청 ID: " + req.RequestID)
		}
		return r.unknownError(req, err, "timetable")
	}

	if suggestToRegister {
		// Only suggest saving when the spoken grade/class isn't stored yet.
		pref, err := r.store.Get(ctx, req.UserKey)
		if err == nil && (pref == nil || pref.Grade != grade || pref.ClassNumber != classNumber) {
			return Response{Outputs: []Output{
				Text(timetable),
				CardOutput(Card{
					Title: "방금 입력하신 정보를 저장할까요?",
					Body:  "학년/반 정보를 등록하시면 다음부터 더 빠르고 편하게 이용하실 수 있습니다.",
					Buttons: []Button{{
						Type:     ButtonMessage,
						Title:    "네, 저장해 주세요.",
						Postback: fmt.Sprintf("사용자 정보 등록: %d학년 %d반", grade, classNumber),
					}},
				}),
			}}
		}
	}

	return textResponse(timetable)
}
