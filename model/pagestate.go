package model

// PageState identifies the top-level view that is currently active.
type PageState string

// Landing, auth and error states.
const (
	StateHome          PageState = "home"
	StateNotFound      PageState = "not-found"
	StateAccessDenied  PageState = "access-denied"
	StateAuth          PageState = "auth"
	StateGetStarted    PageState = "get-started"
	StateResetPassword PageState = "reset-password"
)

// Signup, application and verification flows.
const (
	StateStudentSignup               PageState = "student-signup"
	StateCreatorSignup               PageState = "creator-signup"
	StateTeacherLogin                PageState = "teacher-login"
	StateTeacherSignup               PageState = "teacher-signup"
	StateTeacherSignupBasic          PageState = "teacher-signup-basic"
	StateTeacherVerifyEmail          PageState = "teacher-verify-email"
	StateTeacherVerifyCode           PageState = "teacher-verify-code"
	StateTeacherApplicationStatus    PageState = "teacher-application-status"
	StateTeacherApplication          PageState = "teacher-application"
	StateBecomeTeacher               PageState = "become-teacher"
	StateFreelancerLogin             PageState = "freelancer-login"
	StateFreelancerSignup            PageState = "freelancer-signup"
	StateFreelancerSignupBasic       PageState = "freelancer-signup-basic"
	StateFreelancerApplicationStatus PageState = "freelancer-application-status"
	StateEmailVerification           PageState = "email-verification"
)

// Marketing and legal pages.
const (
	StatePremium             PageState = "premium"
	StateContact             PageState = "contact"
	StateDesignTeamContact   PageState = "design-team-contact"
	StatePrivacy             PageState = "privacy"
	StateTerms               PageState = "terms"
	StateStudentTerms        PageState = "student-terms"
	StateTeacherTerms        PageState = "teacher-terms"
	StateSchoolTerms         PageState = "school-terms"
	StateRefundPolicy        PageState = "refund-policy"
	StatePrivacyPolicy       PageState = "privacy-policy"
	StateCookiesPolicy       PageState = "cookies-policy"
	StateWhatsAppPolicy      PageState = "whatsapp-policy"
	StateDataRetention       PageState = "data-retention"
	StateCopyrightDMCA       PageState = "copyright-dmca"
	StateCommunityGuidelines PageState = "community-guidelines"
	StatePaymentBilling      PageState = "payment-billing"
	StateChatTerms           PageState = "chat-terms"
	StatePayoutPolicy        PageState = "payout-policy"
	StateAbout               PageState = "about"
	StateHelp                PageState = "help"
	StateLearnMore           PageState = "learn-more"
	StateAdvertiseWithUs     PageState = "advertise-with-us"
	StateBlog                PageState = "blog"
	StateBlogPostDetail      PageState = "blog-post-detail"
	StateCommunity           PageState = "community"
	StateNetworking          PageState = "networking"
	StateCustomerPricing     PageState = "customer-pricing"
	StateCreatorPricing      PageState = "creator-pricing"
	StateEducationPricing    PageState = "education-pricing"
	StateTeacherPricing      PageState = "teacher-pricing"
)

// Commerce and checkout.
const (
	StateSubscribe            PageState = "subscribe"
	StateCheckout             PageState = "checkout"
	StateCheckoutAuth         PageState = "checkout-auth"
	StateShopAuth             PageState = "shop-auth"
	StatePaymentSuccess       PageState = "payment-success"
	StateBuyVoucher           PageState = "buy-voucher"
	StateProductShop          PageState = "product-shop"
	StateProductDetail        PageState = "product-detail"
	StateCart                 PageState = "cart"
	StateCategoryDetail       PageState = "category-detail"
	StateFreelancerCheckout   PageState = "freelancer-checkout"
	StateBannerCreator        PageState = "banner-creator"
	StateBannerPayment        PageState = "banner-payment"
	StateTransactionDashboard PageState = "transaction-dashboard"
)

// Learning.
const (
	StateCourseBrowse           PageState = "course-browse"
	StateCourseDetail           PageState = "course-detail"
	StateCoursePlayer           PageState = "course-player"
	StateEducationLevelSelector PageState = "education-level-selector"
	StateSurvey                 PageState = "survey"
	StateSettings               PageState = "settings"
	StateMyCertificates         PageState = "my-certificates"
	StateVerifyCertificate      PageState = "verify-certificate"
	StateClaimCertificate       PageState = "claim-certificate"
)

// Portfolios and freelancing.
const (
	StatePortfolioGallery  PageState = "portfolio-gallery"
	StatePortfolioCreate   PageState = "portfolio-create"
	StatePortfolioEdit     PageState = "portfolio-edit"
	StatePortfolioPreview  PageState = "portfolio-preview"
	StateFreelancerProfile PageState = "freelancer-profile"
	StateProductCreation   PageState = "product-creation"
)

// Meetings.
const (
	StateTeacherMeetings         PageState = "teacher-meetings"
	StateTeacherMeetingDetail    PageState = "teacher-meeting-detail"
	StateTeacherMeetingsSchedule PageState = "teacher-meetings-schedule"
	StateStudentMeetings         PageState = "student-meetings"
	StateMeetingRoom             PageState = "meeting-room"
)

// Role dashboards and creator tooling.
const (
	StateStudentDashboard         PageState = "student-dashboard"
	StateTeacherDashboard         PageState = "teacher-dashboard"
	StateFreelancerDashboard      PageState = "freelancer-dashboard"
	StateCustomerDashboard        PageState = "customer-dashboard"
	StateCreatorEarningsDashboard PageState = "creator-earnings-dashboard"
	StateCourseCreator            PageState = "course-creator"
	StateSubjectCreator           PageState = "subject-creator"
)

// Administration.
const (
	StateAdminDashboard              PageState = "admin-dashboard"
	StateAdminShowcaseDashboard      PageState = "admin-showcase-dashboard"
	StateAdminEmailManagement        PageState = "admin-email-management"
	StateAdminEmailCampaigns         PageState = "admin-email-campaigns"
	StateAdminEmailInbox             PageState = "admin-email-inbox"
	StateAdminBlogManagement         PageState = "admin-blog-management"
	StateAdminCourseManagement       PageState = "admin-course-management"
	StateAdminContactMessages        PageState = "admin-contact-messages"
	StateAdminApplicationsManagement PageState = "admin-applications-management"
	StateAdminSubjectApproval        PageState = "admin-subject-approval"
	StateAdminPayoutManagement       PageState = "admin-payout-management"
	StateLogoManagement              PageState = "logo-management"
	StateCategoryManagement          PageState = "category-management"
	StateCouponManagement            PageState = "coupon-management"
)

// AllStates lists every PageState in declaration order.
var AllStates = []PageState{
	StateHome, StateNotFound, StateAccessDenied, StateAuth, StateGetStarted, StateResetPassword,

	StateStudentSignup, StateCreatorSignup, StateTeacherLogin, StateTeacherSignup,
	StateTeacherSignupBasic, StateTeacherVerifyEmail, StateTeacherVerifyCode,
	StateTeacherApplicationStatus, StateTeacherApplication, StateBecomeTeacher,
	StateFreelancerLogin, StateFreelancerSignup, StateFreelancerSignupBasic,
	StateFreelancerApplicationStatus, StateEmailVerification,

	StatePremium, StateContact, StateDesignTeamContact, StatePrivacy, StateTerms,
	StateStudentTerms, StateTeacherTerms, StateSchoolTerms, StateRefundPolicy,
	StatePrivacyPolicy, StateCookiesPolicy, StateWhatsAppPolicy, StateDataRetention,
	StateCopyrightDMCA, StateCommunityGuidelines, StatePaymentBilling, StateChatTerms,
	StatePayoutPolicy, StateAbout, StateHelp, StateLearnMore, StateAdvertiseWithUs,
	StateBlog, StateBlogPostDetail, StateCommunity, StateNetworking,
	StateCustomerPricing, StateCreatorPricing, StateEducationPricing, StateTeacherPricing,

	StateSubscribe, StateCheckout, StateCheckoutAuth, StateShopAuth, StatePaymentSuccess,
	StateBuyVoucher, StateProductShop, StateProductDetail, StateCart, StateCategoryDetail,
	StateFreelancerCheckout, StateBannerCreator, StateBannerPayment, StateTransactionDashboard,

	StateCourseBrowse, StateCourseDetail, StateCoursePlayer, StateEducationLevelSelector,
	StateSurvey, StateSettings, StateMyCertificates, StateVerifyCertificate, StateClaimCertificate,

	StatePortfolioGallery, StatePortfolioCreate, StatePortfolioEdit, StatePortfolioPreview,
	StateFreelancerProfile, StateProductCreation,

	StateTeacherMeetings, StateTeacherMeetingDetail, StateTeacherMeetingsSchedule,
	StateStudentMeetings, StateMeetingRoom,

	StateStudentDashboard, StateTeacherDashboard, StateFreelancerDashboard,
	StateCustomerDashboard, StateCreatorEarningsDashboard, StateCourseCreator, StateSubjectCreator,

	StateAdminDashboard, StateAdminShowcaseDashboard, StateAdminEmailManagement,
	StateAdminEmailCampaigns, StateAdminEmailInbox, StateAdminBlogManagement,
	StateAdminCourseManagement, StateAdminContactMessages, StateAdminApplicationsManagement,
	StateAdminSubjectApproval, StateAdminPayoutManagement, StateLogoManagement,
	StateCategoryManagement, StateCouponManagement,
}

var knownStates = func() map[PageState]bool {
	m := make(map[PageState]bool, len(AllStates))
	for _, s := range AllStates {
		m[s] = true
	}
	return m
}()

// IsValid reports whether s is a member of the PageState enumeration.
func (s PageState) IsValid() bool {
	return knownStates[s]
}

// ParsePageState returns the PageState named by v, or false if v is not a
// known state.
func ParsePageState(v string) (PageState, bool) {
	s := PageState(v)
	return s, s.IsValid()
}

func (s PageState) String() string {
	return string(s)
}
