package user

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/mailing"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/jwt"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const resetPasswordTTL = 30 * time.Minute

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Logout(ctx context.Context, token string) error
		IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
		GetUsers(ctx context.Context, req domain.UserListRequest, viewerID string) ([]domain.UserResponse, int64, error)
		GetUserByID(ctx context.Context, id string, viewerID string) (domain.UserResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		SetPassword(ctx context.Context, req domain.SetPasswordRequest, userID string) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		ResetPasswordConfirm(ctx context.Context, req domain.ResetPasswordConfirmRequest) error
		UpdateAvatar(ctx context.Context, req domain.AvatarRequest, userID string) (domain.AvatarResponse, error)
		UploadAvatarFile(ctx context.Context, file *multipart.FileHeader, userID string) (domain.AvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID string) error

		Subscribe(ctx context.Context, authorID string, userID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, authorID string, userID string) error
		GetSubscriptions(ctx context.Context, page domain.PaginationRequest, recipesLimit int, userID string) ([]domain.SubscriptionResponse, int64, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		s3             storage.AwsS3
		mailer         mailing.Mailer
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, s3 storage.AwsS3, mailer mailing.Mailer) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		s3:             s3,
		mailer:         mailer,
	}
}

func ToUserResponse(user *entities.User, isSubscribed bool) domain.UserResponse {
	if user == nil {
		return domain.UserResponse{}
	}
	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       user.AvatarURL,
	}
}

func ToRecipeShortResponse(recipe *entities.Recipe) domain.RecipeShortResponse {
	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func (s *userService) getUser(ctx context.Context, id string) (*entities.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterResponse{}, err
	}

	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.RegisterResponse{}, domain.ErrUsernameAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterResponse{}, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     strings.ToLower(req.Email),
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hashedPassword,
		Role:      domain.RoleUser,
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		// a concurrent registration won one of the unique indexes
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if _, lookupErr := s.userRepository.GetUserByUsername(ctx, req.Username); lookupErr == nil {
				return domain.RegisterResponse{}, domain.ErrUsernameAlreadyExists
			}
			return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.RegisterResponse{}, err
	}

	return domain.RegisterResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	if token == "" {
		return domain.LoginResponse{}, domain.ErrTokenInvalid
	}

	return domain.LoginResponse{AuthToken: token}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.GetClaimsByToken(token)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return domain.ErrTokenInvalid
	}
	return s.userRepository.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *userService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return s.userRepository.IsTokenRevoked(ctx, tokenID)
}

func (s *userService) GetUsers(ctx context.Context, req domain.UserListRequest, viewerID string) ([]domain.UserResponse, int64, error) {
	limit := req.Limit
	if limit < 1 || limit > domain.MaxLimit {
		limit = domain.MaxLimit
	}
	offset := max(req.Offset, 0)

	users, count, err := s.userRepository.GetUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID.String())
	}
	followed, err := s.userRepository.GetFollowedAuthorIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, ToUserResponse(u, followed[u.ID.String()]))
	}
	return response, count, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string, viewerID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return domain.UserResponse{}, err
	}

	isSubscribed := false
	if viewerID != "" {
		isSubscribed, err = s.userRepository.IsFollowing(ctx, viewerID, id)
		if err != nil {
			return domain.UserResponse{}, err
		}
	}

	return ToUserResponse(user, isSubscribed), nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return ToUserResponse(user, false), nil
}

func (s *userService) SetPassword(ctx context.Context, req domain.SetPasswordRequest, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.Password, req.CurrentPassword) {
		return domain.ErrWrongPassword
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashedPassword

	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// unknown addresses are not disclosed to the caller
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
	}, resetPasswordTTL)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Hello, %s!</p><p>Use the link below to set a new password. It expires in 30 minutes.</p><p><a href=\"%s\">%s</a></p>",
		user.Username, link, link,
	)

	if err := s.mailer.SendMail(user.Email, "Foodgram password reset", body); err != nil {
		log.Errorf("failed to send reset password mail to %s: %v", user.Email, err)
		return err
	}
	return nil
}

func (s *userService) ResetPasswordConfirm(ctx context.Context, req domain.ResetPasswordConfirmRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}
	email, _ := claims["email"].(string)

	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return domain.ErrTokenInvalid
	}
	used, err := s.userRepository.IsTokenRevoked(ctx, tokenID)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrTokenInvalid
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	// the token is void once the account's email has changed
	if !strings.EqualFold(user.Email, email) {
		return domain.ErrTokenInvalid
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashedPassword

	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return err
	}

	// reset links are single use
	expiresAt := time.Now().Add(resetPasswordTTL)
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}
	return s.userRepository.RevokeToken(ctx, tokenID, expiresAt)
}

func (s *userService) replaceAvatar(ctx context.Context, user *entities.User, upload func() (string, error)) (domain.AvatarResponse, error) {
	previous := user.AvatarURL

	url, err := upload()
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	user.AvatarURL = url
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		_ = storage.RemoveImage(ctx, s.s3, url)
		return domain.AvatarResponse{}, err
	}

	if err := storage.RemoveImage(ctx, s.s3, previous); err != nil {
		log.Warnf("failed to remove previous avatar %s: %v", previous, err)
	}

	return domain.AvatarResponse{Avatar: url}, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, req domain.AvatarRequest, userID string) (domain.AvatarResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	return s.replaceAvatar(ctx, user, func() (string, error) {
		url, err := storage.StoreBase64Image(ctx, s.s3, req.Avatar, fmt.Sprintf("avatar-%s", user.ID), "avatars")
		if errors.Is(err, utils.ErrInvalidDataURI) {
			return "", domain.ErrInvalidImage
		}
		return url, err
	})
}

func (s *userService) UploadAvatarFile(ctx context.Context, file *multipart.FileHeader, userID string) (domain.AvatarResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	return s.replaceAvatar(ctx, user, func() (string, error) {
		objectKey, err := s.s3.UploadFile(ctx, fmt.Sprintf("avatar-%s", user.ID), file, "avatars", storage.AllowImage...)
		if err != nil {
			return "", err
		}
		return s.s3.GetPublicLinkKey(objectKey), nil
	})
}

func (s *userService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == "" {
		return nil
	}

	previous := user.AvatarURL
	user.AvatarURL = ""
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return err
	}

	if err := storage.RemoveImage(ctx, s.s3, previous); err != nil {
		log.Warnf("failed to remove avatar %s: %v", previous, err)
	}
	return nil
}

func (s *userService) buildSubscription(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.userRepository.GetAuthorRecipes(ctx, author.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	count, err := s.userRepository.CountAuthorRecipes(ctx, author.ID.String())
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	short := make([]domain.RecipeShortResponse, 0, len(recipes))
	for _, recipe := range recipes {
		short = append(short, ToRecipeShortResponse(recipe))
	}

	return domain.SubscriptionResponse{
		UserResponse: ToUserResponse(author, true),
		Recipes:      short,
		RecipesCount: count,
	}, nil
}

func (s *userService) Subscribe(ctx context.Context, authorID string, userID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	if author.ID.String() == userID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}

	follow := &entities.Follow{
		ID:        uuid.New(),
		UserID:    userUUID,
		AuthorID:  author.ID,
		CreatedAt: time.Now(),
	}
	if err := s.userRepository.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	return s.buildSubscription(ctx, author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, authorID string, userID string) error {
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return err
	}

	deleted, err := s.userRepository.DeleteFollow(ctx, userID, author.ID.String())
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, page domain.PaginationRequest, recipesLimit int, userID string) ([]domain.SubscriptionResponse, int64, error) {
	page = page.Normalize()

	authors, count, err := s.userRepository.GetSubscriptions(ctx, userID, page.Page, page.Limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		subscription, err := s.buildSubscription(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		response = append(response, subscription)
	}
	return response, count, nil
}
